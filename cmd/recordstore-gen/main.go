// Command recordstore-gen hammers a store file with concurrent
// insert/update/delete cycles, useful for generating churn-heavy
// fixtures and shaking out allocator bugs under load.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-recordstore/recordstore/store"
)

const (
	// Fixed universe
	totalKeys   = 100
	totalValues = 100

	// Per-cycle behavior
	keysPerCycleWrite  = 20
	keysPerCycleDelete = 10

	sleepBetweenCycles = 10 * time.Millisecond

	progressEvery = 500
)

func main() {
	path := flag.String("path", "loadtest.db", "path to the store file to create")
	concurrency := flag.Int("concurrency", 6, "number of concurrent worker goroutines")
	cyclesPerWorker := flag.Int("cycles", 5000, "write/delete/rewrite cycles per worker")
	initialCapacity := flag.Int("initial-capacity", 256, "index slots to reserve up front")
	flag.Parse()

	start := time.Now()
	fmt.Println("Starting churn-heavy load generator")

	s, err := store.Create(*path, *initialCapacity)
	if err != nil {
		fmt.Println("create error:", err)
		return
	}
	defer s.Close()

	keys := makeKeys(totalKeys)
	values := makeValues(totalValues)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(id, s, keys, values, *cyclesPerWorker)
		}(i)
	}
	wg.Wait()

	fmt.Printf("Load finished in %v, %d live records\n", time.Since(start), s.Size())
}

func runWorker(id int, s *store.RecordsStore, keys, values []string, cycles int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	for cycle := 1; cycle <= cycles; cycle++ {

		// ---- WRITE / OVERWRITE PHASE ----
		for i := 0; i < keysPerCycleWrite; i++ {
			key := keys[rng.Intn(len(keys))]
			val := values[rng.Intn(len(values))]
			upsert(s, key, val)
		}

		// ---- DELETE PHASE ----
		for i := 0; i < keysPerCycleDelete; i++ {
			key := keys[rng.Intn(len(keys))]
			if err := s.Delete(key); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
				fmt.Printf("[worker %d] delete error: %v\n", id, err)
				return
			}
		}

		// ---- REWRITE PHASE (forces overwrite garbage) ----
		for i := 0; i < keysPerCycleWrite/2; i++ {
			key := keys[rng.Intn(len(keys))]
			val := values[rng.Intn(len(values))]
			upsert(s, key, val)
		}

		if cycle%progressEvery == 0 {
			fmt.Printf("[worker %d] completed %d cycles\n", id, cycle)
		}

		if sleepBetweenCycles > 0 {
			time.Sleep(sleepBetweenCycles)
		}
	}
}

// upsert inserts key if absent, otherwise updates it. The store has no
// combined primitive for this, so the caller resolves the ErrKeyExists
// and ErrKeyNotFound races itself.
func upsert(s *store.RecordsStore, key, val string) {
	if err := s.Insert(key, []byte(val)); err == nil {
		return
	}
	_ = s.Update(key, []byte(val))
}

func makeKeys(n int) []string {
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf("key-%03d", i)
	}
	return keys
}

func makeValues(n int) []string {
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = fmt.Sprintf("value-%03d-xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", i)
	}
	return values
}
