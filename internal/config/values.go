package config

import (
	"fmt"
	"slices"
	"strings"
)

const (
	DefaultQuote   = "single"
	DefaultVerify  = true
	DefaultWorkers = 4
	MaxWorkers     = 64
)

var validQuotes = []string{"single", "double"}

func defaultExtensions() []string {
	return []string{".js"}
}

func defaultExcludeDirs() []string {
	return []string{".git", "node_modules", "bower_components", "vendor", "coverage"}
}

type Values struct {
	Quote       string
	Verify      bool
	Workers     int
	Extensions  []string
	ExcludeDirs []string
}

type Overrides struct {
	Quote       *string
	Verify      *bool
	Workers     *int
	Extensions  []string
	ExcludeDirs []string
}

func Defaults() Values {
	return Values{
		Quote:       DefaultQuote,
		Verify:      DefaultVerify,
		Workers:     DefaultWorkers,
		Extensions:  defaultExtensions(),
		ExcludeDirs: defaultExcludeDirs(),
	}
}

func (v *Values) Validate() error {
	if !slices.Contains(validQuotes, v.Quote) {
		return fmt.Errorf("invalid quote: %q (expected one of %s)", v.Quote, strings.Join(validQuotes, ", "))
	}
	if v.Workers < 1 || v.Workers > MaxWorkers {
		return fmt.Errorf("invalid workers: %d (expected 1-%d)", v.Workers, MaxWorkers)
	}
	if len(v.Extensions) == 0 {
		return fmt.Errorf("invalid extensions: at least one extension is required")
	}
	for _, ext := range v.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid extension: %q (expected a leading dot, e.g. .js)", ext)
		}
	}
	for _, dir := range v.ExcludeDirs {
		if strings.TrimSpace(dir) == "" || strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("invalid exclude_dirs entry: %q (expected a directory name)", dir)
		}
	}
	return nil
}

func (o *Overrides) Apply(base Values) Values {
	resolved := base
	if o.Quote != nil {
		resolved.Quote = strings.ToLower(strings.TrimSpace(*o.Quote))
	}
	if o.Verify != nil {
		resolved.Verify = *o.Verify
	}
	if o.Workers != nil {
		resolved.Workers = *o.Workers
	}
	if o.Extensions != nil {
		resolved.Extensions = normalizeExtensions(o.Extensions)
	}
	if o.ExcludeDirs != nil {
		resolved.ExcludeDirs = append([]string{}, o.ExcludeDirs...)
	}
	return resolved
}

func normalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if !strings.HasPrefix(value, ".") {
			value = "." + value
		}
		if !slices.Contains(out, value) {
			out = append(out, value)
		}
	}
	return out
}
