// Command evesummary prints a YAML overview of scan datasets, with the characteristics of the
// preferred channel of every chain and, for several files, their comparison.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"

	"github.com/viant/evedata/characteristic"
	"github.com/viant/evedata/compare"
	"github.com/viant/evedata/dataset"
	"github.com/viant/evedata/loader"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		zap.S().Fatalw("evesummary failed", "error", err)
	}
}

type comparison struct {
	Axis       string   `yaml:"axis"`
	Channel    string   `yaml:"channel"`
	Compatible bool     `yaml:"compatible"`
	Pending    bool     `yaml:"pending,omitempty"`
	Reasons    []string `yaml:"reasons,omitempty"`
	XLabel     string   `yaml:"xLabel,omitempty"`
	YLabel     string   `yaml:"yLabel,omitempty"`
	Points     []int    `yaml:"points,omitempty"`
}

func run(ctx context.Context, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("evesummary", flag.ContinueOnError)
	configURL := flags.String("config", "", "YAML config URL")
	axis := flags.String("axis", "", "axis overriding the preferred one")
	channel := flags.String("channel", "", "channel overriding the preferred one")
	policy := flags.String("policy", "", "comparison policy: strict, permissive or prompt")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return errors.New("usage: evesummary [-config URL] [-axis name] [-channel name] [-policy name] file...")
	}
	config := loader.DefaultConfig()
	if *configURL != "" {
		var err error
		if config, err = loader.LoadConfig(ctx, *configURL); err != nil {
			return err
		}
	}
	if *axis != "" {
		config.Axis = *axis
	}
	if *channel != "" {
		config.Channel = *channel
	}
	if *policy != "" {
		config.Policy = *policy
	}
	files, err := loader.New(loader.WithConfig(config))
	if err != nil {
		return err
	}
	datasets, err := files.LoadAll(ctx, flags.Args()...)
	if err != nil {
		return err
	}
	encoder := yaml.NewEncoder(out)
	defer encoder.Close()
	for _, ds := range datasets {
		summary := ds.Summary()
		for _, chain := range summary.Chains {
			source, err := ds.Chain(chain.ID)
			if err != nil {
				return err
			}
			chain.Extras = characteristics(source.View(), config)
		}
		if err = encoder.Encode(summary); err != nil {
			return err
		}
	}
	if len(datasets) < 2 {
		return nil
	}
	mode, err := compare.ParsePolicy(config.Policy)
	if err != nil {
		return err
	}
	result, err := compare.Compare(datasets, config.Axis, config.Channel, mode)
	if err != nil {
		return err
	}
	return encoder.Encode(newComparison(result))
}

func newComparison(result *compare.Result) *comparison {
	ret := &comparison{
		Axis:       result.Report.Axis,
		Channel:    result.Report.Channel,
		Compatible: result.Report.Compatible(),
		Pending:    result.Report.Pending,
	}
	for _, entry := range result.Report.Entries {
		for _, reason := range entry.Reasons {
			ret.Reasons = append(ret.Reasons, entry.Name+": "+reason)
		}
	}
	if result.View != nil {
		ret.XLabel, ret.YLabel = result.View.XLabel, result.View.YLabel
		for _, series := range result.View.Series {
			ret.Points = append(ret.Points, len(series.Points))
		}
	}
	return ret
}

// characteristics describes the configured or preferred channel of view; undefined values are reported as such
func characteristics(view *dataset.View, config *loader.Config) map[string]any {
	name := config.Channel
	if name == "" {
		name, _ = view.PreferredChannel()
	}
	if name == "" {
		return nil
	}
	var opts []characteristic.Option
	if _, ok := view.Series(config.Axis); ok {
		opts = append(opts, characteristic.WithAxis(config.Axis))
	}
	calc, err := characteristic.New(view, name, opts...)
	if err != nil {
		return map[string]any{"channel": name, "error": err.Error()}
	}
	ret := map[string]any{"channel": name, "axis": calc.Axis()}
	if minimum, maximum, err := calc.Extrema(); err == nil {
		ret["minimum"], ret["maximum"] = minimum, maximum
	} else {
		ret["extrema"] = err.Error()
	}
	ret["stepWidth"] = valueOrError(calc.StepWidth())
	if width, err := calc.FWHM(); err == nil {
		ret["fwhm"] = width.Value
	} else {
		ret["fwhm"] = err.Error()
	}
	if duration, err := calc.Duration(); err == nil {
		ret["duration"] = duration.String()
	} else {
		ret["duration"] = err.Error()
	}
	return ret
}

func valueOrError(value float64, err error) any {
	if err != nil {
		return err.Error()
	}
	return value
}
