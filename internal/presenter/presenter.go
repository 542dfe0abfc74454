// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-gnss/internal/config"
	"github.com/wneessen/waybar-gnss/internal/formatter"
	"github.com/wneessen/waybar-gnss/internal/i18n"
	"github.com/wneessen/waybar-gnss/internal/indicator"
	"github.com/wneessen/waybar-gnss/internal/solution"
)

// IndicatorGlyph is the symbol that is colored by the solution status.
const IndicatorGlyph = "●"

// CoordinateView is a labeled coordinate row as seen by the templates.
type CoordinateView struct {
	Label string
	Value string
}

type TemplateContext struct {
	Format            string
	FormatDescription string

	Status      string
	StatusClass string
	Color       string
	Indicator   string
	HasSolution bool

	Coordinates []CoordinateView
	Covariance  string
	Age         string
	AgeSeconds  float64
	Ratio       float64
	Satellites  int

	UpdateTime time.Time
}

type Presenter struct {
	TextTemplate    *template.Template
	AltTextTemplate *template.Template
	TooltipTemplate *template.Template

	textColor string
	formatter *formatter.Formatter
	humanizer *humanize.Humanizer
	localizer *spreak.Localizer
}

// New parses the configured templates and renders each of them once against a sample context
// so that broken templates are reported at startup instead of on the first solution.
func New(conf *config.Config, localizer *spreak.Localizer) (*Presenter, error) {
	collection := humanize.MustNew(humanize.WithLocale(de.New()))
	pres := &Presenter{
		textColor: conf.Display.TextColor,
		formatter: formatter.New(localizer),
		humanizer: collection.CreateHumanizer(i18n.Tag(conf.Locale)),
		localizer: localizer,
	}

	templates := []struct {
		name string
		text string
		dest **template.Template
	}{
		{"text", conf.Templates.Text, &pres.TextTemplate},
		{"alt_text", conf.Templates.AltText, &pres.AltTextTemplate},
		{"tooltip", conf.Templates.Tooltip, &pres.TooltipTemplate},
	}
	for _, tpl := range templates {
		parsed, err := template.New(tpl.name).Funcs(pres.templateFuncMap()).Parse(tpl.text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", tpl.name, err)
		}
		*tpl.dest = parsed
	}

	format, err := formatter.ParseFormat(conf.Display.Format)
	if err != nil {
		format = formatter.Default
	}
	view := new(View)
	sample := pres.formatter.Render(solution.Result{}, format, nil, formatter.Ellipsoidal)
	view.Apply(sample)
	if _, err = pres.Render(pres.BuildContext(view, sample, solution.Result{})); err != nil {
		return nil, err
	}

	return pres, nil
}

// BuildContext assembles the template context from the current view and the latest render.
func (p *Presenter) BuildContext(view *View, rendered formatter.Rendered, result solution.Result) TemplateContext {
	format := rendered.Format
	if format == nil {
		format = formatter.Default
	}
	return TemplateContext{
		Format:            format.Name(),
		FormatDescription: p.formatter.Label(format.Description()),
		Status:            rendered.Status.String(),
		StatusClass:       indicator.Class(rendered.Status),
		Color:             indicator.HexColor(rendered.Color),
		Indicator:         indicator.Markup(rendered.Status, IndicatorGlyph),
		HasSolution:       view.HasValues(),
		Coordinates:       view.Coordinates(),
		Covariance:        view.Covariance(),
		Age:               rendered.Age,
		AgeSeconds:        result.Age,
		Ratio:             result.Ratio,
		Satellites:        result.Satellites,
		UpdateTime:        result.Time,
	}
}

// Render executes all templates against the context. The text outputs are wrapped into the
// configured text color, if any.
func (p *Presenter) Render(ctx TemplateContext) (map[string]string, error) {
	out := make(map[string]string)
	templates := []struct {
		name string
		tpl  *template.Template
	}{
		{"text", p.TextTemplate},
		{"alt_text", p.AltTextTemplate},
		{"tooltip", p.TooltipTemplate},
	}

	buf := bytes.NewBuffer(nil)
	for _, tpl := range templates {
		buf.Reset()
		if err := tpl.tpl.Execute(buf, ctx); err != nil {
			return nil, fmt.Errorf("failed to render %s template: %w", tpl.name, err)
		}
		out[tpl.name] = buf.String()
	}

	if p.textColor != "" {
		out["text"] = p.colorize(out["text"])
		out["alt_text"] = p.colorize(out["alt_text"])
	}
	return out, nil
}

func (p *Presenter) colorize(text string) string {
	return fmt.Sprintf(`<span foreground="%s">%s</span>`, p.textColor, text)
}
