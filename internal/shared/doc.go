// Package shared holds helpers used by more than one package.
//
// The testutil subpackage captures slog output so tests can assert on what a
// component logged without parsing JSON:
//
//	logger, logs := testutil.NewTestLogger(t)
//	pipeline := dataprocessing.NewPipeline(cfg, dataprocessing.WithPipelineLogger(logger))
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "coarse regions")
//
// Packages here must not import other internal packages.
package shared
