package tracing

import (
	"context"
	"strconv"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	// RenderLatencyMs measures how long a serialization takes, cache lookups included
	RenderLatencyMs = stats.Float64("mailblocks/render/latency", "Template render latency", stats.UnitMilliseconds)
	// RenderEmptyBlocks counts blocks that rendered to nothing
	RenderEmptyBlocks = stats.Int64("mailblocks/render/empty_blocks", "Blocks rendered to an empty fragment", stats.UnitDimensionless)

	keyMode     = tag.MustNewKey("mode")
	keyFormat   = tag.MustNewKey("format")
	keyCacheHit = tag.MustNewKey("cache_hit")
)

var (
	RenderCountView = &view.View{
		Name:        "mailblocks/render/count",
		Description: "Renders by mode, export format and cache outcome",
		Measure:     RenderLatencyMs,
		TagKeys:     []tag.Key{keyMode, keyFormat, keyCacheHit},
		Aggregation: view.Count(),
	}
	RenderLatencyView = &view.View{
		Name:        "mailblocks/render/latency",
		Description: "Render latency distribution by mode",
		Measure:     RenderLatencyMs,
		TagKeys:     []tag.Key{keyMode},
		Aggregation: view.Distribution(1, 2, 5, 10, 25, 50, 100, 250, 500, 1000),
	}
	RenderEmptyBlocksView = &view.View{
		Name:        "mailblocks/render/empty_blocks",
		Description: "Blocks that rendered to nothing",
		Measure:     RenderEmptyBlocks,
		TagKeys:     []tag.Key{keyMode},
		Aggregation: view.Sum(),
	}
)

// RegisterRenderViews registers the render views with the metrics exporters
func RegisterRenderViews() error {
	return view.Register(RenderCountView, RenderLatencyView, RenderEmptyBlocksView)
}

// RecordRender records one render. Nothing is exported until the views are registered.
func RecordRender(ctx context.Context, mode, format string, cacheHit bool, elapsed time.Duration, emptyBlocks int) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{
			tag.Upsert(keyMode, mode),
			tag.Upsert(keyFormat, format),
			tag.Upsert(keyCacheHit, strconv.FormatBool(cacheHit)),
		},
		RenderLatencyMs.M(float64(elapsed)/float64(time.Millisecond)),
		RenderEmptyBlocks.M(int64(emptyBlocks)),
	)
}
