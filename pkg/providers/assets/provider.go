// Package assets exposes a read-only view of a content directory, the
// way an editor surfaces its project files. Listings match doublestar
// patterns against root-relative paths, so a filter can never reach
// outside the configured root.
package assets

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getremoted/remoted/pkg/logging"
	"github.com/getremoted/remoted/pkg/router"
)

// Error codes specific to asset operations.
const (
	ErrCodeAssetNotFound = "asset_not_found"
	ErrCodeIO            = "io_error"
)

// defaultListLimit caps unbounded listings of large content roots.
const defaultListLimit = 1000

// Asset is one entry under the content root.
type Asset struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Ext        string    `json:"ext,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Provider serves the /assets routes over a single content root.
type Provider struct {
	root string
	log  *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Provider) {
		if log != nil {
			p.log = log
		}
	}
}

// NewProvider creates an assets provider rooted at root.
func NewProvider(root string, opts ...Option) *Provider {
	p := &Provider{
		root: root,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Info() router.Info {
	return router.Info{
		Name:        "assets",
		BasePath:    "/assets",
		Description: "Read-only listing of the content root",
	}
}

func (p *Provider) Routes() []router.Route {
	return []router.Route{
		{Verb: router.VerbGet, Path: "/assets/list", Handler: p.handleList},
		{Verb: router.VerbGet, Path: "/assets/info", Handler: p.handleInfo},
	}
}

func (p *Provider) Shutdown(context.Context) error {
	return nil
}

// handleList walks the root and returns matching files in lexical
// order. Hidden entries are skipped. The listing is capped; truncated
// reports whether the cap cut it short.
func (p *Provider) handleList(req router.Request) router.Response {
	filter := req.QueryValue("filter")
	if filter != "" && !doublestar.ValidatePattern(filter) {
		return router.Failf(http.StatusBadRequest, router.ErrCodeValidation,
			"invalid filter pattern: %s", filter)
	}

	limit := defaultListLimit
	if raw := req.QueryValue("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return router.Fail(http.StatusBadRequest, router.ErrCodeValidation,
				"limit must be a positive integer")
		}
		limit = n
	}

	assets := make([]*Asset, 0)
	truncated := false
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != p.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if filter != "" {
			ok, err := doublestar.Match(filter, rel)
			if err != nil || !ok {
				return nil
			}
		}

		if len(assets) >= limit {
			truncated = true
			return fs.SkipAll
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		assets = append(assets, &Asset{
			Path:       rel,
			Name:       d.Name(),
			Size:       info.Size(),
			Ext:        strings.TrimPrefix(filepath.Ext(d.Name()), "."),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		p.log.Error("asset walk failed", "root", p.root, "error", err)
		return router.Fail(http.StatusInternalServerError, ErrCodeIO, "failed to list assets")
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })
	return router.OK(map[string]any{
		"assets":    assets,
		"count":     len(assets),
		"truncated": truncated,
	})
}

// handleInfo returns metadata for one path under the root.
func (p *Provider) handleInfo(req router.Request) router.Response {
	raw := req.QueryValue("path")
	if raw == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "path query parameter is required")
	}

	rel, ok := confine(raw)
	if !ok {
		return router.Failf(http.StatusBadRequest, router.ErrCodeValidation,
			"path must stay inside the content root: %s", raw)
	}

	full := filepath.Join(p.root, rel)
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return router.Failf(http.StatusNotFound, ErrCodeAssetNotFound, "no asset at %s", raw)
		}
		p.log.Error("asset stat failed", "path", full, "error", err)
		return router.Fail(http.StatusInternalServerError, ErrCodeIO, "failed to stat asset")
	}

	slashRel := filepath.ToSlash(rel)
	if info.IsDir() {
		entries, err := os.ReadDir(full)
		if err != nil {
			return router.Fail(http.StatusInternalServerError, ErrCodeIO, "failed to read directory")
		}
		return router.OK(map[string]any{
			"path":    slashRel,
			"name":    info.Name(),
			"is_dir":  true,
			"entries": len(entries),
		})
	}

	return router.OK(map[string]any{
		"asset": &Asset{
			Path:       slashRel,
			Name:       info.Name(),
			Size:       info.Size(),
			Ext:        strings.TrimPrefix(filepath.Ext(info.Name()), "."),
			ModifiedAt: info.ModTime(),
		},
		"is_dir": false,
	})
}

// confine cleans a client-supplied path and rejects anything that would
// escape the root.
func confine(raw string) (string, bool) {
	rel := filepath.Clean(filepath.FromSlash(raw))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
