package testutil

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/mazen160/go-random"
)

// RandomSwitch returns a function that will output various integers at different weights.
//
// Ex. RandomSwitch(2, 3, 5) will return a function that will output:
//   - `0` 20% of the time
//   - `1` 30% of the time
//   - `2` 50% of the time
func RandomSwitch(weights ...int) func(rndm *rand.Rand) int {
	if len(weights) == 0 {
		panic("a random switch must have at least 1 probability")
	}

	var sum int
	for _, p := range weights {
		if p <= 0 {
			panic("weights must be positive")
		}
		sum += p
	}

	return func(rndm *rand.Rand) int {
		value := rndm.Intn(sum)

		threshold := 0
		for i := 0; i < len(weights); i++ {
			threshold += weights[i]
			if value < threshold {
				return i
			}
		}

		panic(fmt.Sprintf("random value generated was out of bounds: %d", value))
	}
}

var present = RandomSwitch(4, 1)
var vendorShape = RandomSwitch(6, 1, 1, 1)

// RandomPlugin generates a marketplace plugin object with the given id. Fields other
// than the id are randomly left out, and vendor is sometimes empty, null or not an object.
func RandomPlugin(t testing.TB, rndm *rand.Rand, id int) map[string]any {
	t.Helper()

	name, err := random.String(12)
	if err != nil {
		t.Fatal(err)
	}
	vendor, err := random.String(6)
	if err != nil {
		t.Fatal(err)
	}

	plugin := map[string]any{"id": id}
	if present(rndm) == 0 {
		plugin["name"] = name
	}
	if present(rndm) == 0 {
		plugin["downloads"] = rndm.Intn(10_000_000)
	}
	if present(rndm) == 0 {
		plugin["rating"] = float64(rndm.Intn(50)) / 10
	}
	if present(rndm) == 0 {
		plugin["pricingModel"] = []string{"FREE", "PAID", "FREEMIUM"}[rndm.Intn(3)]
	}
	if present(rndm) == 0 {
		tags := make([]string, rndm.Intn(4))
		for i := range tags {
			tags[i] = fmt.Sprintf("tag%d", rndm.Intn(10))
		}
		plugin["tags"] = tags
	}
	if present(rndm) == 0 {
		plugin["cdate"] = int64(1_300_000_000_000) + rndm.Int63n(400_000_000_000)
	}

	switch vendorShape(rndm) {
	case 0:
		plugin["vendor"] = map[string]any{"name": vendor}
	case 1:
		plugin["vendor"] = map[string]any{}
	case 2:
		plugin["vendor"] = nil
	case 3:
		plugin["vendor"] = vendor
	}

	return plugin
}

// Marketplace serves the given plugins the way the listing endpoint does, honoring
// the offset and max query parameters. Requests past the end get an empty list.
func Marketplace(t testing.TB, plugins []map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		if err != nil {
			http.Error(w, "bad offset", http.StatusBadRequest)
			return
		}
		max, err := strconv.Atoi(r.URL.Query().Get("max"))
		if err != nil {
			http.Error(w, "bad max", http.StatusBadRequest)
			return
		}

		page := []map[string]any{}
		if offset < len(plugins) {
			page = plugins[offset:min(offset+max, len(plugins))]
		}
		w.Header().Set("content-type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"plugins": page,
			"total":   len(plugins),
		})
	}))
	t.Cleanup(server.Close)
	return server
}
