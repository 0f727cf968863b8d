package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/notesservice/internal/config"
	notesBox "github.com/2beens/notesservice/internal/notes_box"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite

	server     *Server
	endpoint   string
	httpClient *http.Client
	staticDir  string
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupSuite() {
	logrus.SetOutput(io.Discard)

	s.staticDir = s.T().TempDir()
	s.Require().NoError(os.WriteFile(
		filepath.Join(s.staticDir, "app.css"),
		[]byte("body { color: red; }"),
		0o644,
	))
	s.httpClient = &http.Client{}
}

// every test gets a fresh server, so the seeded collection is always intact
func (s *ServerTestSuite) SetupTest() {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.StaticDir = s.staticDir

	var err error
	s.server, err = NewServer(context.Background(), NewServerParams{
		Config:      cfg,
		VersionInfo: "test-version",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.server.Serve(cfg.Host, cfg.Port))
	s.endpoint = fmt.Sprintf("http://%s", s.server.Addr())
}

func (s *ServerTestSuite) TearDownTest() {
	s.httpClient.CloseIdleConnections()
	s.server.GracefulShutdown()
}

func (s *ServerTestSuite) do(method, path string, body any) (*http.Response, []byte) {
	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, s.endpoint+path, reqBody)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, respBytes
}

func (s *ServerTestSuite) listNotes() []notesBox.Note {
	resp, body := s.do("GET", "/api/notes", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var notes []notesBox.Note
	s.Require().NoError(json.Unmarshal(body, &notes))
	return notes
}

func (s *ServerTestSuite) TestRoot() {
	resp, body := s.do("GET", "/", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/html")
	s.Equal("<h1>Hello World! Esto es un mensaje desde el backend.</h1>", string(body))
	s.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
	s.NotEmpty(resp.Header.Get("X-Request-Id"))
}

func (s *ServerTestSuite) TestListSeeded() {
	notes := s.listNotes()
	s.Require().Len(notes, 3)
	s.Equal(notesBox.SeedNotes(), notes)
}

func (s *ServerTestSuite) TestGetSeededNote() {
	resp, body := s.do("GET", "/api/notes/2", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var note notesBox.Note
	s.Require().NoError(json.Unmarshal(body, &note))
	s.Equal(2, note.ID)
	s.Equal("Browser can execute only Javascript", note.Content)
}

func (s *ServerTestSuite) TestTrailingSlash() {
	resp, body := s.do("GET", "/api/notes/", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var notes []notesBox.Note
	s.Require().NoError(json.Unmarshal(body, &notes))
	s.Len(notes, 3)

	resp, body = s.do("GET", "/api/notes/2/", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var note notesBox.Note
	s.Require().NoError(json.Unmarshal(body, &note))
	s.Equal(2, note.ID)

	resp, body = s.do("POST", "/api/notes/", map[string]any{"content": "slashed"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body, &note))
	s.Equal(4, note.ID)

	resp, _ = s.do("DELETE", "/api/notes/4/", nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)
	s.Len(s.listNotes(), 3)

	// only one slash is optional
	resp, body = s.do("GET", "/api/notes//", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.JSONEq(`{"error":"unknown endpoint"}`, string(body))
}

func (s *ServerTestSuite) TestGetMissingNote() {
	resp, body := s.do("GET", "/api/notes/999", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Empty(body)
}

func (s *ServerTestSuite) TestUnknownEndpoint() {
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		resp, body := s.do(method, "/api/unknown", nil)
		s.Equal(http.StatusNotFound, resp.StatusCode, method)
		s.JSONEq(`{"error":"unknown endpoint"}`, string(body), method)
		s.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"), method)
	}

	// a known path with an unsupported method falls through too
	resp, body := s.do("PUT", "/api/notes/1", map[string]string{"content": "x"})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.JSONEq(`{"error":"unknown endpoint"}`, string(body))
}

func (s *ServerTestSuite) TestCreateDeleteLifecycle() {
	content := gofakeit.Sentence(5)
	resp, body := s.do("POST", "/api/notes", map[string]any{"content": content})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var created notesBox.Note
	s.Require().NoError(json.Unmarshal(body, &created))
	s.Equal(4, created.ID)
	s.Equal(content, created.Content)
	s.False(created.Important)
	s.False(created.Date.IsZero())

	resp, body = s.do("POST", "/api/notes", map[string]any{"content": "second", "important": true})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var second notesBox.Note
	s.Require().NoError(json.Unmarshal(body, &second))
	s.Equal(5, second.ID)
	s.True(second.Important)

	// remove one from the middle and the current max
	resp, body = s.do("DELETE", "/api/notes/2", nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)
	s.Empty(body)
	resp, _ = s.do("DELETE", "/api/notes/5", nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)

	notes := s.listNotes()
	ids := make([]int, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	s.Equal([]int{1, 3, 4}, ids)

	// max+1 after deleting the previous max
	resp, body = s.do("POST", "/api/notes", map[string]any{"content": "reuse"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var reused notesBox.Note
	s.Require().NoError(json.Unmarshal(body, &reused))
	s.Equal(5, reused.ID)
}

func (s *ServerTestSuite) TestDeleteMissingIsIdempotent() {
	before := s.listNotes()

	for i := 0; i < 2; i++ {
		resp, body := s.do("DELETE", "/api/notes/999", nil)
		s.Equal(http.StatusNoContent, resp.StatusCode)
		s.Empty(body)
	}

	s.Equal(before, s.listNotes())
}

func (s *ServerTestSuite) TestCreateContentMissing() {
	resp, body := s.do("POST", "/api/notes", map[string]any{})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.JSONEq(`{"error":"content missing"}`, string(body))
	s.Len(s.listNotes(), 3)
}

func (s *ServerTestSuite) TestCreateMalformedJSON() {
	req, err := http.NewRequest("POST", s.endpoint+"/api/notes", bytes.NewBufferString(`{"content":`))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Len(s.listNotes(), 3)
}

func (s *ServerTestSuite) TestCreateBodyTooLarge() {
	hugeContent := bytes.Repeat([]byte("a"), 200<<10)
	resp, body := s.do("POST", "/api/notes", map[string]any{"content": string(hugeContent)})
	s.Equal(http.StatusRequestEntityTooLarge, resp.StatusCode)
	s.JSONEq(`{"error":"request entity too large"}`, string(body))
	s.Len(s.listNotes(), 3)
}

func (s *ServerTestSuite) TestPreflight() {
	req, err := http.NewRequest("OPTIONS", s.endpoint+"/api/notes", nil)
	s.Require().NoError(err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNoContent, resp.StatusCode)
	s.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
	s.Equal("content-type", resp.Header.Get("Access-Control-Allow-Headers"))
	s.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "DELETE")
}

func (s *ServerTestSuite) TestStaticFile() {
	resp, body := s.do("GET", "/app.css", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/css")
	s.Equal("body { color: red; }", string(body))

	resp, body = s.do("GET", "/missing.css", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.JSONEq(`{"error":"unknown endpoint"}`, string(body))
}

func (s *ServerTestSuite) TestVersion() {
	resp, body := s.do("GET", "/version", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("test-version", string(body))
}

func TestNewServer_NoConfig(t *testing.T) {
	server, err := NewServer(context.Background(), NewServerParams{})
	if err == nil || server != nil {
		t.Fatalf("expected error for missing config, got server %v, err %v", server, err)
	}
}

func TestNewServer_InitialNotes(t *testing.T) {
	logrus.SetOutput(io.Discard)

	cfg := config.Default()
	server, err := NewServer(context.Background(), NewServerParams{
		Config:       cfg,
		InitialNotes: []notesBox.Note{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := server.notesStore.Len(context.Background()); n != 0 {
		t.Fatalf("expected empty store, got %d notes", n)
	}
}
