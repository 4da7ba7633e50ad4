package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aouyang1/go-ols/dataset"
	"github.com/aouyang1/go-ols/linearmodel"
	"github.com/aouyang1/go-ols/plot"
	"github.com/goccy/go-json"
)

var (
	ErrNoData   = errors.New("no data file given")
	ErrNoParams = errors.New("no parameter file given")
)

func readDataset(path, target string) (*dataset.Dataset, error) {
	if path == "" {
		return nil, ErrNoData
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open data file, %w", err)
	}
	defer f.Close()

	ds, err := dataset.ReadCSV(f, target)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return ds, nil
}

// writeDataset writes to path or to stdout when path is empty
func writeDataset(ds *dataset.Dataset, path, target string, stdout io.Writer) error {
	if path == "" {
		return ds.WriteCSV(stdout, target)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s, %w", path, err)
	}
	if err := ds.WriteCSV(f, target); err != nil {
		f.Close()
		return fmt.Errorf("unable to write %s, %w", path, err)
	}
	return f.Close()
}

func runFit(cfg *Config, stdout io.Writer) error {
	ds, err := readDataset(cfg.Data, cfg.Target)
	if err != nil {
		return err
	}
	x, y, err := ds.Matrices()
	if err != nil {
		return err
	}

	model, err := linearmodel.NewOLSRegression(&linearmodel.OLSOptions{
		FitIntercept:  !cfg.NoIntercept,
		RankTolerance: cfg.RankTolerance,
	})
	if err != nil {
		return err
	}
	if err := model.Fit(x, y); err != nil {
		return fmt.Errorf("unable to fit %s, %w", cfg.Data, err)
	}
	slog.Info("fit ols model", "observations", ds.Len(), "features", ds.NumFeatures(), "intercept", !cfg.NoIntercept)

	m, err := model.Model(ds.Labels)
	if err != nil {
		return err
	}
	if err := m.TablePrint(stdout, "", "  "); err != nil {
		return err
	}

	if cfg.Out != "" {
		if err := model.Save(cfg.Out); err != nil {
			return err
		}
		slog.Info("saved parameters", "path", cfg.Out)
	}

	if cfg.Plot != "" {
		predicted, err := model.Predict(x)
		if err != nil {
			return err
		}
		f, err := os.Create(cfg.Plot)
		if err != nil {
			return fmt.Errorf("unable to create %s, %w", cfg.Plot, err)
		}
		if err := plot.PlotFit(f, ds.Y, predicted); err != nil {
			f.Close()
			return fmt.Errorf("unable to plot fit, %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		slog.Info("plotted fit", "path", cfg.Plot)
	}
	return nil
}

func runPredict(cfg *Config, stdout io.Writer) error {
	if cfg.Params == "" {
		return ErrNoParams
	}
	model, err := linearmodel.NewOLSRegressionFromFile(cfg.Params)
	if err != nil {
		return err
	}

	ds, err := readDataset(cfg.Data, "")
	if err != nil {
		return err
	}
	x, err := ds.FeatureMatrix()
	if err != nil {
		return err
	}

	ds.Y, err = model.Predict(x)
	if err != nil {
		return fmt.Errorf("unable to predict %s, %w", cfg.Data, err)
	}
	slog.Debug("predicted observations", "observations", ds.Len())

	return writeDataset(ds, cfg.Out, cfg.Target, stdout)
}

func runShow(cfg *Config, stdout io.Writer) error {
	if cfg.Params == "" {
		return ErrNoParams
	}
	model, err := linearmodel.NewOLSRegressionFromFile(cfg.Params)
	if err != nil {
		return err
	}

	var labels []string
	if len(cfg.Labels) > 0 {
		labels = cfg.Labels
	}
	m, err := model.Model(labels)
	if err != nil {
		return err
	}

	if cfg.JSON {
		out, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	}

	if err := m.TablePrint(stdout, "", "  "); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, m.Eq())
	return err
}

func runSimulate(cfg *Config, stdout io.Writer) error {
	ds, err := dataset.Simulate(&dataset.SimulateOptions{
		NumObservations: cfg.NumObservations,
		Intercept:       cfg.Intercept,
		Coef:            cfg.Coef,
		FeatureMin:      cfg.FeatureMin,
		FeatureMax:      cfg.FeatureMax,
		NoiseScale:      cfg.NoiseScale,
		Seed:            cfg.Seed,
	})
	if err != nil {
		return err
	}
	slog.Debug("simulated dataset", "observations", ds.Len(), "features", ds.NumFeatures())

	return writeDataset(ds, cfg.Out, cfg.Target, stdout)
}
