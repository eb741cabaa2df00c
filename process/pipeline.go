package process

import (
	"go.uber.org/zap"

	"brandcss/config"
	"brandcss/css"
	"brandcss/prefix"
	"brandcss/recolor"
)

// pipeline is stylesheet processor assembled from configuration.
type pipeline struct {
	*css.Processor
	recolor *recolor.Transform
}

func newPipeline(cfg *config.Config, log *zap.Logger) (*pipeline, error) {
	var (
		p       = &pipeline{}
		plugins []css.Plugin
	)

	if cfg.Recolor.Enable {
		cm, err := cfg.Recolor.ColorMap()
		if err != nil {
			return nil, err
		}
		p.recolor = recolor.New(cm, log)
		plugins = append(plugins, p.recolor)
	}
	if cfg.Prefix.Enable {
		plugins = append(plugins, prefix.New(cfg.Prefix.Properties, log))
	}
	if len(plugins) == 0 {
		log.Warn("All processing stages are disabled, stylesheets will only be reformatted")
	}

	p.Processor = css.NewProcessor(log, plugins...)
	return p, nil
}

// summary logs statistics accumulated by the stages.
func (p *pipeline) summary() {
	if p.recolor != nil {
		p.recolor.LogStats()
	}
}
