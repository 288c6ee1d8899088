package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/npillmayer/foundry"
	"github.com/npillmayer/foundry/ot"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// job is an operation on a single font. It reports whether the font has been
// changed and has to be saved.
type job func(ctx context.Context, f *foundry.Font, log *logrus.Entry) (bool, error)

// run applies a job to all fonts, with at most g.Jobs fonts in flight. Failing
// fonts are logged and do not stop the others; run reports how many failed.
func (g *Globals) run(ctx context.Context, op string, fonts []string, do job, opts ...foundry.Option) error {
	var failed atomic.Int32
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(max(1, g.Jobs))
	for _, path := range fonts {
		grp.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log := logrus.WithFields(logrus.Fields{"op": op, "font": path})
			if err := g.process(ctx, path, do, log, opts); err != nil {
				log.WithError(err).Error("failed")
				failed.Add(1)
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%s: %d of %d fonts failed", op, n, len(fonts))
	}
	return nil
}

func (g *Globals) process(ctx context.Context, path string, do job, log *logrus.Entry, opts []foundry.Option) error {
	opts = append([]foundry.Option{foundry.FromConfig(g.config())}, opts...)
	f, err := foundry.NewFont(path, opts...)
	if err != nil {
		return err
	}
	defer f.Close()
	changed, err := do(ctx, f, log)
	if err != nil {
		return err
	}
	if !changed {
		log.Info("no changes")
		return nil
	}
	out, err := f.FilePath(foundry.PathOptions{
		OutputDir: g.OutputDir,
		Overwrite: g.Overwrite,
		Suffix:    g.Suffix,
	})
	if err != nil {
		return err
	}
	if err := f.Save(out, g.reorder()); err != nil {
		return err
	}
	log.WithField("output", out).Info("saved")
	return nil
}

// reorder translates the --reorder flag for Save.
func (g *Globals) reorder() ot.Option[bool] {
	switch g.Reorder {
	case "tag":
		return ot.Some(true)
	case "keep":
		return ot.Some(false)
	}
	return ot.None[bool]()
}
