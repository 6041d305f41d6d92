package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
)

// Serves a shelf.json produced by export-shelf. Static by design: the
// share page needs no database and no auth, just the latest export.
func main() {
	var (
		dataPath = flag.String("data", "data/shelf.json", "shelf JSON path")
		addr     = flag.String("addr", ":9000", "listen address")
	)
	flag.Parse()

	http.HandleFunc("/shelf", func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile(*dataPath)
		if err != nil {
			http.Error(w, "cannot read shelf file: "+err.Error(), http.StatusInternalServerError)
			return
		}
		// reject a half-written export instead of serving garbage
		var tmp any
		if err := json.Unmarshal(b, &tmp); err != nil {
			http.Error(w, "shelf file invalid JSON: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	})

	log.Printf("[shelf-server] listening on %s, serving %s", *addr, *dataPath)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
