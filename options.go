package xlsxstream

import (
	"io"
	"log/slog"
)

// ByteArrayResolver loads the bytes referenced by an "@@@fileid@@@,<path>"
// cell sentinel. The zero value resolves through the Document's own zip
// archive.
type ByteArrayResolver func(path string) (io.ReadCloser, error)

// Options configures a Document.
type Options struct {
	fillMergedCells         bool
	ignoreEmptyRows         bool
	enableSharedStringCache bool
	sharedStringCacheSize   int64
	enableConvertByteArray  bool
	trimColumnNames         bool
	dynamicSheets           map[string]string
	date1904Override        *bool
	logger                  *slog.Logger
	byteArrayResolver       ByteArrayResolver
}

// Option configures a Document at Open/OpenReader time.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		enableSharedStringCache: true,
		sharedStringCacheSize:   1 << 20, // 1 MiB
		logger:                  slog.Default(),
	}
}

// WithFillMergedCells propagates a merge anchor's value to every slave cell
// in its range; off by default.
func WithFillMergedCells(v bool) Option {
	return func(o *Options) { o.fillMergedCells = v }
}

// WithIgnoreEmptyRows suppresses emission of gap-filled empty rows between
// sparsely-numbered rows.
func WithIgnoreEmptyRows(v bool) Option {
	return func(o *Options) { o.ignoreEmptyRows = v }
}

// WithSharedStringCache toggles SharedStringStore's disk-spill behaviour and
// sets the byte threshold at or above which a shared-strings part spills to a
// temp file instead of staying resident.
func WithSharedStringCache(enabled bool, thresholdBytes int64) Option {
	return func(o *Options) {
		o.enableSharedStringCache = enabled
		o.sharedStringCacheSize = thresholdBytes
	}
}

// WithConvertByteArray enables recognising the "@@@fileid@@@,<path>" cell
// sentinel and resolving it through resolver (or the Document's own archive
// if resolver is nil).
func WithConvertByteArray(enabled bool, resolver ByteArrayResolver) Option {
	return func(o *Options) {
		o.enableConvertByteArray = enabled
		o.byteArrayResolver = resolver
	}
}

// WithTrimColumnNames strips surrounding whitespace from header-row labels
// when UseHeaderRow is set.
func WithTrimColumnNames(v bool) Option {
	return func(o *Options) { o.trimColumnNames = v }
}

// WithDynamicSheets registers alias -> real sheet name indirection consulted
// by Query/QueryRange after an exact-name miss.
func WithDynamicSheets(aliases map[string]string) Option {
	return func(o *Options) { o.dynamicSheets = aliases }
}

// WithDate1904 overrides the workbook's own workbookPr/@date1904 flag. Most
// callers should leave this unset and let the Document read the flag from
// the archive itself.
func WithDate1904(v bool) Option {
	return func(o *Options) { o.date1904Override = &v }
}

// WithLogger sets the slog.Logger used for the Document's diagnostic
// output; defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}
