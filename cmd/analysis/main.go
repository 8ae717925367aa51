// Command analysis measures how the sketch's observed accuracy tracks
// the epsilon/delta guarantee. For each parameter pair it counts a
// Zipf-distributed stream, compares every key's estimate against its
// true frequency, and reports the observed overestimation and bound
// violation rate alongside the configured targets.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"text/tabwriter"

	"github.com/kmello/countmin"
)

func main() {
	var (
		keys = flag.Int("keys", 50_000, "number of distinct keys")
		mass = flag.Int("mass", 1_000_000, "total observations to draw")
		zipf = flag.Float64("zipf", 1.1, "Zipf skew parameter (s > 1)")
		seed = flag.Uint64("seed", 1, "PRNG seed")
	)
	flag.Parse()

	params := []struct{ epsilon, delta float64 }{
		{0.1, 0.1},
		{0.01, 0.1},
		{0.01, 0.01},
		{0.001, 0.01},
		{0.0001, 0.001},
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "epsilon\tdelta\twidth\tdepth\tmemory\tmean overest\teps*N\tviolations\tdelta target")

	for _, p := range params {
		run(w, p.epsilon, p.delta, *keys, *mass, *zipf, *seed)
	}
	w.Flush()
}

func run(w *tabwriter.Writer, epsilon, delta float64, keys, mass int, skew float64, seed uint64) {
	s, err := countmin.New(epsilon, delta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	z := rand.NewZipf(rng, skew, 1, uint64(keys-1))

	truth := make([]uint64, keys)
	key := make([]byte, 0, 32)
	for range mass {
		k := z.Uint64()
		truth[k]++
		key = fmt.Appendf(key[:0], "key-%d", k)
		s.Add(key)
	}

	n := float64(s.TotalCount())
	bound := epsilon * n

	var (
		violations int
		observed   int
		sumOverest float64
	)
	for k, f := range truth {
		if f == 0 {
			continue
		}
		observed++
		key = fmt.Appendf(key[:0], "key-%d", k)
		est := uint64(s.Query(key))
		over := float64(est - f) // estimates never undercount
		sumOverest += over
		if over > bound {
			violations++
		}
	}

	memory := s.Width() * s.Depth() * 4
	fmt.Fprintf(w, "%g\t%g\t%d\t%d\t%s\t%.1f\t%.1f\t%.4f\t%g\n",
		epsilon, delta, s.Width(), s.Depth(), formatBytes(memory),
		sumOverest/float64(observed), bound,
		float64(violations)/float64(observed), delta)
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
