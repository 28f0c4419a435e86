package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"reportcache/internal/dataset"
	"reportcache/internal/metrics"
	pcsv "reportcache/internal/parser/csv"
	"reportcache/pkg/records"
)

type sourceResult struct {
	info    dataset.SourceInfo
	records []records.Record
}

// build reads all sources concurrently, keeping source order in the merged
// result, then normalizes and numbers the records.
func (s *Store) build(ctx context.Context, e *entry) (d *dataset.Dataset, err error) {
	start := s.now()
	id := e.spec.ID
	defer func() { metrics.RecordStep(id, "load", err, s.now().Sub(start)) }()

	results := make([]sourceResult, len(e.spec.Sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range e.spec.Sources {
		i, src := i, src
		g.Go(func() error {
			r, err := s.readSource(gctx, e, src)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r.records)
	}
	merged := make([]records.Record, 0, total)
	infos := make([]dataset.SourceInfo, 0, len(results))
	fp := xxh3.New()
	var skipped int
	for _, r := range results {
		merged = append(merged, r.records...)
		infos = append(infos, r.info)
		skipped += r.info.Skipped
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], r.info.Checksum)
		_, _ = fp.Write(b[:])
	}

	merged, quality := e.norm.Run(merged)
	for i, rec := range merged {
		rec[dataset.FieldID] = i + 1
	}

	d = &dataset.Dataset{
		ID:          id,
		Generation:  uuid.NewString(),
		LoadedAt:    s.now(),
		Fingerprint: fp.Sum64(),
		Records:     merged,
		Sources:     infos,
		Quality:     quality,
	}

	unclassified := 0
	for _, n := range quality {
		unclassified += n
	}
	metrics.RecordRow(id, "loaded", int64(len(merged)))
	metrics.RecordRow(id, "skipped", int64(skipped))
	metrics.RecordRow(id, "unclassifiable", int64(unclassified))

	s.log.Info("dataset loaded",
		zap.String("dataset", id),
		zap.String("generation", d.Generation),
		zap.Int("records", len(merged)),
		zap.Int("skipped", skipped),
		zap.Int("unclassifiable", unclassified),
		zap.Strings("missing", d.MissingSources()),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return d, nil
}

func (s *Store) readSource(ctx context.Context, e *entry, src dataset.Source) (sourceResult, error) {
	path := filepath.Join(s.dataDir, src.File)
	res := sourceResult{info: dataset.SourceInfo{Path: path, Origin: src.Origin}}
	ds := s.source(path)

	info, err := ds.Stat(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		res.info.Missing = true
		s.log.Warn("source file missing; loading as empty",
			zap.String("dataset", e.spec.ID),
			zap.String("path", path),
		)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.info.Modified = info.Modified

	rc, err := ds.Open(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		res.info.Missing = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	defer rc.Close()

	h := xxh3.New()
	p := pcsv.NewParser(e.norm.ParserOptions(src, s.log.With(zap.String("dataset", e.spec.ID), zap.String("path", path))))
	recs, pr, err := p.Parse(io.TeeReader(rc, h))
	if err != nil {
		return res, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := io.Copy(h, rc); err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}

	if e.spec.OriginField != "" && src.Origin != "" {
		for _, r := range recs {
			r[e.spec.OriginField] = src.Origin
		}
	}

	res.records = recs
	res.info.Rows = pr.Rows
	res.info.Skipped = pr.Skipped
	res.info.Checksum = h.Sum64()
	return res, nil
}
