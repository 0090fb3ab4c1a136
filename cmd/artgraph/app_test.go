package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/artgraph/config"
	"github.com/c360studio/artgraph/graph"
)

const recordJSON = `{
	"priref": "147735",
	"benaming_kunstwerk": ["Portret van Jan"],
	"RKD_algemene_trefwoorden_linkref": ["1001"],
	"materiaal_lref": ["3001"],
	"breedte": "45,5 cm",
	"toeschrijving": [{"naam_linkref": "42", "naam_inverted": "Hals, Frans"}],
	"voorgestelde": [{
		"priref": "500",
		"naam_display": "Jan",
		"geboortedatum_begin": "1600",
		"geboortedatum_eind": "1600",
		"huwelijk": [{"datum_huwelijk": "1650", "huwelijks_partner": "Anna"}]
	}]
}`

const secondRecordJSON = `{
	"priref": "147736",
	"benaming_kunstwerk": ["Portret van Anna"],
	"toeschrijving": [{"naam_linkref": "42", "naam_inverted": "Hals, Frans"}]
}`

const mediumPage = `<html><body>
<div class="term"><div class="title">olieverf</div></div>
</body></html>`

// newTermServer serves one term page; every other term is missing.
func newTermServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("term") == "3001" {
			w.Write([]byte(mediumPage))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func testConfig(t *testing.T, dir string, termURL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Source.Input = []string{filepath.Join(dir, "records", "**", "*.json")}
	cfg.Source.TermURL = termURL + "/{locale}/explore/thesaurus?term={id}"
	cfg.Source.Retries = 0
	cfg.Cache.Path = filepath.Join(dir, "cache", "terms.json")
	cfg.Output.Path = filepath.Join(dir, "out", "graph.ttl")
	cfg.Output.Format = "turtle"
	require.NoError(t, cfg.Validate())
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func startApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app := NewApp(cfg, "test-run", prometheus.NewRegistry(), nil)
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() { app.Shutdown(context.Background()) })
	return app
}

func TestAppRunFromFiles(t *testing.T) {
	dir := t.TempDir()
	srv, _ := newTermServer(t)
	writeFile(t, filepath.Join(dir, "records", "147735.json"), recordJSON)
	writeFile(t, filepath.Join(dir, "records", "more", "147736.json"), secondRecordJSON)

	app := startApp(t, testConfig(t, dir, srv.URL))
	report, err := app.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Records)
	assert.Zero(t, report.Failed)

	out, err := os.ReadFile(app.cfg.Output.Path)
	require.NoError(t, err)
	ttl := string(out)
	assert.Contains(t, ttl, "<https://rkd.nl/explore/images/147735>")
	assert.Contains(t, ttl, "<https://rkd.nl/explore/images/147736>")
	assert.Contains(t, ttl, "a schema:VisualArtwork ;")
	assert.Contains(t, ttl, `"Portret van Jan"@nl`)
	assert.Contains(t, ttl, `"olieverf"@nl`)
	assert.Contains(t, ttl, `"0.455"^^xsd:float`)
	// The shared artist is one node.
	assert.Equal(t, 1, strings.Count(ttl, "<https://data.rkd.nl/artists/42>\n"))

	cached, err := os.ReadFile(app.cfg.Cache.Path)
	require.NoError(t, err)
	var terms map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(cached, &terms))
	assert.Contains(t, terms, "3001")
	assert.NotContains(t, terms, "1001", "reference-mode keywords are never fetched")
}

func TestAppRunByID(t *testing.T) {
	dir := t.TempDir()
	srv, _ := newTermServer(t)
	writeFile(t, filepath.Join(dir, "records", "147735.json"), recordJSON)
	writeFile(t, filepath.Join(dir, "records", "147736.json"), secondRecordJSON)

	app := startApp(t, testConfig(t, dir, srv.URL))
	report, err := app.Run(context.Background(), []string{"147736", "999"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Records)
	assert.Equal(t, 1, report.Failed)
	_, ok := app.assembler.Node("https://rkd.nl/explore/images/147736")
	assert.True(t, ok)
	_, ok = app.assembler.Node("https://rkd.nl/explore/images/147735")
	assert.False(t, ok)
}

func TestAppRunSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	srv, _ := newTermServer(t)
	writeFile(t, filepath.Join(dir, "records", "1.json"), recordJSON)
	writeFile(t, filepath.Join(dir, "records", "2.json"), `{"priref": `)
	writeFile(t, filepath.Join(dir, "records", "3.json"), `{"benaming_kunstwerk": "no id"}`)

	app := startApp(t, testConfig(t, dir, srv.URL))
	report, err := app.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Records)
	assert.Equal(t, 2, report.Failed)
}

func TestAppRunWithoutInput(t *testing.T) {
	dir := t.TempDir()
	srv, _ := newTermServer(t)
	cfg := testConfig(t, dir, srv.URL)
	cfg.Source.Input = nil

	app := startApp(t, cfg)
	_, err := app.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestAppRunFromRecordAPI(t *testing.T) {
	dir := t.TempDir()
	terms, _ := newTermServer(t)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/147736") {
			w.Write([]byte(secondRecordJSON))
			return
		}
		http.NotFound(w, r)
	}))
	defer api.Close()

	cfg := testConfig(t, dir, terms.URL)
	cfg.Source.Input = nil
	cfg.Source.RecordURL = api.URL + "/api/record/portraits/"
	cfg.Output.Path = ""
	cfg.Output.Format = "ntriples"

	app := startApp(t, cfg)
	var stdout bytes.Buffer
	app.stdout = &stdout

	report, err := app.Run(context.Background(), []string{"147736"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)
	assert.Contains(t, stdout.String(),
		"<https://rkd.nl/explore/images/147736> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://schema.org/VisualArtwork> .")
}

func TestAppReusesTermCacheAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	srv, hits := newTermServer(t)
	writeFile(t, filepath.Join(dir, "records", "147735.json"), recordJSON)
	cfg := testConfig(t, dir, srv.URL)

	first := startApp(t, cfg)
	_, err := first.Run(context.Background(), nil)
	require.NoError(t, err)
	fetched := hits.Load()
	require.Positive(t, fetched)

	second := startApp(t, cfg)
	_, err = second.Run(context.Background(), nil)
	require.NoError(t, err)

	// Only the missing terms are fetched again.
	assert.Less(t, hits.Load()-fetched, fetched)
	out, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"olieverf"@nl`)
}

type recordingStream struct {
	subjects []string
	failAll  bool
}

func (s *recordingStream) Publish(_ context.Context, subject string, _ []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if s.failAll {
		return nil, errors.New("no responders")
	}
	s.subjects = append(s.subjects, subject)
	return &jetstream.PubAck{Stream: graphStream}, nil
}

func TestAppFinishPublishesGraph(t *testing.T) {
	dir := t.TempDir()
	srv, _ := newTermServer(t)
	writeFile(t, filepath.Join(dir, "records", "147736.json"), secondRecordJSON)

	app := startApp(t, testConfig(t, dir, srv.URL))
	stream := &recordingStream{}
	app.publisher = graph.NewPublisher(stream, app.runID, nil)

	_, err := app.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, stream.subjects, app.assembler.Len())
	assert.Equal(t, graph.GraphIngestSubject, stream.subjects[0])
}

func TestAppFinishReportsSinkFailures(t *testing.T) {
	dir := t.TempDir()
	srv, _ := newTermServer(t)
	writeFile(t, filepath.Join(dir, "records", "147736.json"), secondRecordJSON)

	app := startApp(t, testConfig(t, dir, srv.URL))
	app.publisher = graph.NewPublisher(&recordingStream{failAll: true}, app.runID, nil)

	_, err := app.Run(context.Background(), nil)
	require.Error(t, err)

	// The export still happened.
	_, statErr := os.Stat(app.cfg.Output.Path)
	assert.NoError(t, statErr)
}

func TestAppStartRejectsPublishWithoutNATS(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.Path = filepath.Join(t.TempDir(), "terms.json")
	cfg.NATS.Publish = true

	app := NewApp(cfg, "test-run", nil, nil)
	defer app.Shutdown(context.Background())
	assert.Error(t, app.Start(context.Background()))
}
