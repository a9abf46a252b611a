package format

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats are the intensity statistics of a channel.
type Stats struct {
	Minimum int     `json:"minimum"`
	Maximum int     `json:"maximum"`
	Mean    float64 `json:"mean"`
	Stddev  float64 `json:"stddev"`
}

// ComputeStats computes the statistics of every channel, in parallel.
func ComputeStats(ctx context.Context, r *Raster) ([]Stats, error) {
	stats := make([]Stats, len(r.Planes))

	g, ctx := errgroup.WithContext(ctx)
	for c, plane := range r.Planes {
		c, plane := c, plane
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(plane) == 0 {
				return nil
			}

			values := make([]float64, len(plane))
			for i, v := range plane {
				values[i] = float64(v)
			}

			mean, std := stat.MeanStdDev(values, nil)
			if len(values) < 2 {
				std = 0
			}
			stats[c] = Stats{
				Minimum: int(floats.Min(values)),
				Maximum: int(floats.Max(values)),
				Mean:    mean,
				Stddev:  std,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
