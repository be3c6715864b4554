// Command demo drives an SWR cache from a synthetic render loop on the
// terminal, the way the teacher's cmd/bench load generator drives a
// Cache from synthetic workload, here standing in for a GUI's frame
// loop since there is no real windowing toolkit in this repository.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/swr-go/swr"
	"github.com/swr-go/swr/fetcher"
	"github.com/swr-go/swr/hook/manual"
	"github.com/swr-go/swr/metrics/prom"
	"github.com/swr-go/swr/runtime/goroutine"
	"github.com/swr-go/swr/swropts"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	frameDelay := flag.Duration("frame", 200*time.Millisecond, "simulated frame interval")
	frames := flag.Int("frames", 40, "number of frames to run")
	refresh := flag.Duration("refresh", 2*time.Second, "refresh_interval for the demo key")
	flag.Parse()

	reg := prometheus.NewRegistry()
	m := prom.New(reg, "swr", "demo", nil)

	hk := manual.New()
	fc := fetcher.Func[string](func(ctx context.Context, key string) (any, error) {
		time.Sleep(50 * time.Millisecond)
		if rand.Intn(10) == 0 {
			return nil, fmt.Errorf("upstream hiccup for %q", key)
		}
		return fmt.Sprintf("%s @ %s", key, time.Now().Format(time.RFC3339Nano)), nil
	})

	cache := swr.New[string](fc, goroutine.New(), hk, swr.WithMetrics[string](m))

	p := swr.Persist[string, string](cache, "weather/sf", swropts.Options[string]{
		FetchOnFirstUse:    true,
		RefreshInterval:    refresh,
		RevalidateOnFocus:  true,
		ErrorRetryInterval: durPtr(time.Second),
		ErrorRetryCount:    intPtr(5),
	})
	defer p.Release()

	for i := 0; i < *frames; i++ {
		res := p.Get()
		switch {
		case res.Err != nil:
			log.Printf("frame %02d: error: %v", i, res.Err)
		case res.Data != nil:
			log.Printf("frame %02d: data=%q loading=%v validating=%v", i, *res.Data, res.Loading, res.Validating)
		default:
			log.Printf("frame %02d: no data yet, loading=%v", i, res.Loading)
		}
		hk.EndFrame()
		time.Sleep(*frameDelay)
	}
}

func durPtr(d time.Duration) *time.Duration { return &d }
func intPtr(n int) *int                     { return &n }
