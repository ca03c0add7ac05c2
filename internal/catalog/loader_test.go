package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = "\ufeffwine_name,winery_name,country,region_1,grapes,rating,num_reviews\n" +
	"Tondonia Reserva,R. Lopez de Heredia,Spain,Rioja,\"Tempranillo, Garnacha\",4.4,120\n" +
	"Opus One,Opus One Winery,United States,Napa Valley,Cabernet Sauvignon,4.6,\n"

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestLoadDir_MissingFilesYieldsEmptyCatalog(t *testing.T) {
	cat, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
	assert.Nil(t, Search(cat, "Opus One"))
}

func TestLoadDir_CSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wines.csv"), []byte(testCSV))

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	first := cat.At(0)
	assert.Equal(t, "Tondonia Reserva", first.WineName)
	assert.Equal(t, "Tempranillo, Garnacha", *first.Grape)
	assert.Equal(t, 120, *first.NumRatings)

	second := cat.At(1)
	assert.Equal(t, "Napa Valley", *second.Region)
	assert.Nil(t, second.NumRatings)
}

func TestLoadDir_GzipCSV(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "wines.csv.gz"))
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(testCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, "Opus One", cat.At(1).WineName)
}

func TestLoadDir_JSONL(t *testing.T) {
	dir := t.TempDir()
	data := `{"name": "Tondonia", "winery": "R. Lopez de Heredia", "country": "Spain", "average_rating": 4.40, "reviews": 98.0}

not json
["an", "array"]
{"name": "Fort Ross Top of Land", "region": "Sonoma Coast", "average_rating": null}
`
	writeFile(t, filepath.Join(dir, "wines.jsonl"), []byte(data))

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	first := cat.At(0)
	assert.Equal(t, "Tondonia", first.WineName)
	assert.InDelta(t, 4.4, *first.AvgRating, 1e-9)
	assert.Equal(t, 98, *first.NumRatings)

	second := cat.At(1)
	assert.Equal(t, "Sonoma Coast", *second.Region)
	assert.Nil(t, second.AvgRating)
}

func TestLoadDir_EmptyCandidateFallsThrough(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wines.csv"), []byte("wine_name,country\n"))
	writeFile(t, filepath.Join(dir, "wines.jsonl"), []byte(`{"wine_name": "Opus One"}`+"\n"))

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "Opus One", cat.At(0).WineName)
}

func TestLoadDir_CSVTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wines.csv"), []byte(testCSV))
	writeFile(t, filepath.Join(dir, "wines.jsonl"), []byte(`{"wine_name": "Other"}`+"\n"))

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestLoadDir_Parquet(t *testing.T) {
	dir := t.TempDir()
	rating := 4.6
	reviews := int64(250)
	rows := []parquetRow{
		{WineName: "Opus One", Country: "United States", Region1: "Napa Valley", Rating: &rating, NumReviews: &reviews},
		{Name: "Tondonia", Winery: "R. Lopez de Heredia", Region: "Rioja"},
	}
	require.NoError(t, parquet.WriteFile(filepath.Join(dir, "wines.parquet"), rows))

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	first := cat.At(0)
	assert.Equal(t, "Opus One", first.WineName)
	assert.InDelta(t, 4.6, *first.AvgRating, 1e-9)
	assert.Equal(t, 250, *first.NumRatings)

	second := cat.At(1)
	assert.Equal(t, "Tondonia", second.WineName)
	assert.Equal(t, "Rioja", *second.Region)
	assert.Nil(t, second.AvgRating)
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFile("wines.xlsx")
	assert.Error(t, err)
}
