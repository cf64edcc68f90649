// Package fakes serves canned knowledge base and Bot API responses.
package fakes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
)

// Entity is one knowledge base entry.
type Entity struct {
	ID    string
	Label string
	Birth string
	Death string
}

// Wikidata answers entity searches and facts queries from memory.
type Wikidata struct {
	*httptest.Server

	mu          sync.Mutex
	byName      map[string]Entity
	unreachable bool
}

func NewWikidata() *Wikidata {
	w := &Wikidata{byName: make(map[string]Entity)}
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", w.search)
	mux.HandleFunc("/sparql", w.sparql)
	w.Server = httptest.NewServer(mux)
	return w
}

func (w *Wikidata) Put(name string, e Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e.Label == "" {
		e.Label = name
	}
	w.byName[name] = e
}

// SetDeath changes the death date of a known entry.
func (w *Wikidata) SetDeath(name, date string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.byName[name]
	if ok {
		e.Death = date
		w.byName[name] = e
	}
	return ok
}

func (w *Wikidata) SetUnreachable(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unreachable = v
}

func (w *Wikidata) down(rw http.ResponseWriter) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.unreachable {
		rw.WriteHeader(http.StatusServiceUnavailable)
		return true
	}
	return false
}

type searchResult struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

func (w *Wikidata) search(rw http.ResponseWriter, r *http.Request) {
	if w.down(rw) {
		return
	}
	name := r.URL.Query().Get("search")
	results := []searchResult{}
	w.mu.Lock()
	if e, ok := w.byName[name]; ok {
		results = append(results, searchResult{ID: e.ID, Label: e.Label, Description: "essere umano"})
	}
	w.mu.Unlock()
	writeJSON(rw, map[string]any{"search": results})
}

var entityRef = regexp.MustCompile(`wd:(Q\d+)`)

type value struct {
	Value string `json:"value"`
}

func (w *Wikidata) sparql(rw http.ResponseWriter, r *http.Request) {
	if w.down(rw) {
		return
	}
	wanted := make(map[string]bool)
	for _, m := range entityRef.FindAllStringSubmatch(r.URL.Query().Get("query"), -1) {
		wanted[m[1]] = true
	}

	bindings := []map[string]value{}
	w.mu.Lock()
	for _, e := range w.byName {
		if !wanted[e.ID] {
			continue
		}
		b := map[string]value{
			"person":      {Value: "http://www.wikidata.org/entity/" + e.ID},
			"personLabel": {Value: e.Label},
		}
		if e.Birth != "" {
			b["birthDate"] = value{Value: e.Birth + "T00:00:00Z"}
		}
		if e.Death != "" {
			b["deathDate"] = value{Value: e.Death + "T00:00:00Z"}
		}
		bindings = append(bindings, b)
	}
	w.mu.Unlock()
	writeJSON(rw, map[string]any{"results": map[string]any{"bindings": bindings}})
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(v)
}
