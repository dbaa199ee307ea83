package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// Route keys accepted by Fail, Hold and Calls
const (
	RouteUpload         = "POST /clothes"
	RouteList           = "GET /clothes"
	RouteDelete         = "DELETE /clothes/{id}"
	RouteRecommend      = "POST /recommendation"
	RouteRecommendQuery = "GET /recommendation"
	RouteRate           = "POST /rate"
)

// Upload is what the backend received for one multipart upload
type Upload struct {
	Fields           map[string]string
	FieldTypes       map[string]string
	ImageFilename    string
	ImageContentType string
	ImageSize        int
}

// Failure is a canned non-2xx answer
type Failure struct {
	Status int
	Body   string
}

type hold struct {
	arrived chan struct{}
	release chan struct{}
}

// FakeBackend is an in-memory wardrobe server honoring the backend REST
// contract. Routes can be made to fail or to block until released.
type FakeBackend struct {
	server *httptest.Server

	mu             sync.Mutex
	clothes        []client.ClothingItem
	nextID         int
	recommendation json.RawMessage
	uploads        []Upload
	ratings        []client.RatingRequest
	recRequests    []client.RecommendationRequest
	lastQuery      map[string][]string
	calls          map[string]int
	failures       map[string]Failure
	raw            map[string]string
	holds          map[string]*hold
}

// NewFakeBackend starts a fake backend that shuts down with the test
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		nextID:         1,
		recommendation: json.RawMessage(`{"outfit_id":"","weather":"","occasion":"","items":{}}`),
		calls:          make(map[string]int),
		failures:       make(map[string]Failure),
		raw:            make(map[string]string),
		holds:          make(map[string]*hold),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Post("/clothes", b.route(RouteUpload, b.handleUpload))
	r.Get("/clothes", b.route(RouteList, b.handleList))
	r.Delete("/clothes/{id}", b.route(RouteDelete, b.handleDelete))
	r.Post("/recommendation", b.route(RouteRecommend, b.handleRecommend))
	r.Get("/recommendation", b.route(RouteRecommendQuery, b.handleRecommendQuery))
	r.Post("/rate", b.route(RouteRate, b.handleRate))

	b.server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

// URL is the backend base URL
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// Client returns an API client pointed at the backend
func (b *FakeBackend) Client() *client.Client {
	return client.NewClient(client.Config{BaseURL: b.server.URL})
}

// Close stops the server and releases any held requests
func (b *FakeBackend) Close() {
	b.mu.Lock()
	for route, h := range b.holds {
		close(h.release)
		delete(b.holds, route)
	}
	b.mu.Unlock()
	b.server.Close()
}

// Fail makes route answer with status and body until Recover is called
func (b *FakeBackend) Fail(route string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = Failure{Status: status, Body: body}
}

// Recover clears a failure set with Fail
func (b *FakeBackend) Recover(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

// RespondRaw makes route answer 200 with body verbatim
func (b *FakeBackend) RespondRaw(route, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw[route] = body
}

// Hold blocks requests on route until release is called. arrived receives
// one value per blocked request.
func (b *FakeBackend) Hold(route string) (arrived <-chan struct{}, release func()) {
	h := &hold{arrived: make(chan struct{}, 16), release: make(chan struct{})}

	b.mu.Lock()
	b.holds[route] = h
	b.mu.Unlock()

	var once sync.Once
	return h.arrived, func() {
		once.Do(func() {
			b.mu.Lock()
			if b.holds[route] == h {
				delete(b.holds, route)
				close(h.release)
			}
			b.mu.Unlock()
		})
	}
}

// Calls returns how many requests reached route
func (b *FakeBackend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// AddClothing stores items, assigning ids to those without one
func (b *FakeBackend) AddClothing(items ...client.ClothingItem) []client.ClothingItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range items {
		if items[i].ID == 0 {
			items[i].ID = b.nextID
		}
		if items[i].ID >= b.nextID {
			b.nextID = items[i].ID + 1
		}
		b.clothes = append(b.clothes, items[i])
	}
	return items
}

// Clothing returns a copy of the stored items
func (b *FakeBackend) Clothing() []client.ClothingItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]client.ClothingItem(nil), b.clothes...)
}

// SetRecommendation sets the outfit returned by both recommendation routes
func (b *FakeBackend) SetRecommendation(resp client.RecommendationResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		panic(err)
	}
	b.SetRecommendationJSON(string(data))
}

// SetRecommendationJSON sets the outfit body verbatim, e.g. to send null slots
func (b *FakeBackend) SetRecommendationJSON(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recommendation = json.RawMessage(body)
}

// Uploads returns every upload received
func (b *FakeBackend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Ratings returns every rating received
func (b *FakeBackend) Ratings() []client.RatingRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]client.RatingRequest(nil), b.ratings...)
}

// RecommendationRequests returns every JSON recommendation request received
func (b *FakeBackend) RecommendationRequests() []client.RecommendationRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]client.RecommendationRequest(nil), b.recRequests...)
}

// LastQuery returns the query parameters of the most recent GET request
func (b *FakeBackend) LastQuery() map[string][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery
}

// route counts the call and applies holds, failures and raw bodies before
// handing over to next
func (b *FakeBackend) route(key string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[key]++
		if r.Method == http.MethodGet {
			b.lastQuery = r.URL.Query()
		}
		h := b.holds[key]
		b.mu.Unlock()

		if h != nil {
			h.arrived <- struct{}{}
			select {
			case <-h.release:
			case <-r.Context().Done():
				return
			}
		}

		b.mu.Lock()
		failure, failing := b.failures[key]
		raw, hasRaw := b.raw[key]
		b.mu.Unlock()

		if failing {
			w.WriteHeader(failure.Status)
			io.WriteString(w, failure.Body)
			return
		}
		if hasRaw {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, raw)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (b *FakeBackend) handleUpload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}

	up := Upload{Fields: map[string]string{}, FieldTypes: map[string]string{}}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		data, err := io.ReadAll(part)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if part.FormName() == "image" {
			up.ImageFilename = part.FileName()
			up.ImageContentType = part.Header.Get("Content-Type")
			up.ImageSize = len(data)
			continue
		}
		up.Fields[part.FormName()] = string(data)
		up.FieldTypes[part.FormName()] = part.Header.Get("Content-Type")
	}

	if up.ImageSize == 0 {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	b.mu.Lock()
	item := client.ClothingItem{
		ID:       b.nextID,
		Category: up.Fields["category"],
		Color:    up.Fields["color"],
		Material: up.Fields["material"],
		Occasion: up.Fields["occasion"],
		ImageURL: fmt.Sprintf("/uploads/%d.jpg", b.nextID),
	}
	b.nextID++
	b.clothes = append(b.clothes, item)
	b.uploads = append(b.uploads, up)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, client.UploadConfirmation{
		Message:  "Clothing item uploaded successfully",
		ID:       item.ID,
		ImageURL: item.ImageURL,
	})
}

func (b *FakeBackend) handleList(w http.ResponseWriter, r *http.Request) {
	occasions := splitTerms(r.URL.Query().Get("occasion"))
	prefs := splitTerms(r.URL.Query().Get("preferences"))

	b.mu.Lock()
	items := []client.ClothingItem{}
	for _, item := range b.clothes {
		if len(occasions) > 0 && !containsFold(occasions, item.Occasion) {
			continue
		}
		if len(prefs) > 0 && !containsFold(prefs, item.Category) && !containsFold(prefs, item.Color) && !containsFold(prefs, item.Material) {
			continue
		}
		items = append(items, item)
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, items)
}

func (b *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, item := range b.clothes {
		if item.ID == id {
			b.clothes = append(b.clothes[:i], b.clothes[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	writeError(w, http.StatusNotFound, "clothing item not found")
}

func (b *FakeBackend) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req client.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Occasion) == "" {
		writeError(w, http.StatusBadRequest, "occasion is required")
		return
	}

	b.mu.Lock()
	b.recRequests = append(b.recRequests, req)
	body := b.recommendation
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (b *FakeBackend) handleRecommendQuery(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.URL.Query().Get("occasion")) == "" {
		writeError(w, http.StatusBadRequest, "occasion is required")
		return
	}

	b.mu.Lock()
	body := b.recommendation
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (b *FakeBackend) handleRate(w http.ResponseWriter, r *http.Request) {
	var req client.RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Rating < client.MinRating || req.Rating > client.MaxRating {
		writeError(w, http.StatusBadRequest, "rating out of range")
		return
	}

	b.mu.Lock()
	b.ratings = append(b.ratings, req)
	b.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func splitTerms(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
