// layout.go - общий каркас страниц: шапка с навигацией, переключатель
// языка, уведомление и тело страницы.
package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

type navLink struct {
	href string
	key  string
}

var (
	adminNav = []navLink{
		{"/view-reports", "nav.stop_reports"},
		{"/reporteCamiones", "nav.bus_reports"},
		{"/noticias", "nav.news"},
		{"/usuarios", "nav.admins"},
	}
	userNav = []navLink{
		{"/index", "nav.news"},
		{"/report", "nav.report_stop"},
		{"/reporteCamion", "nav.report_bus"},
		{"/misReportes", "nav.my_reports"},
	}
)

// Layout оборачивает content в каркас страницы портала.
func Layout(b Base, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}

		p.raw(`<!DOCTYPE html><html lang="`)
		p.text(b.Lang)
		p.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		p.text(b.T(b.Title))
		p.raw(` · Gamy</title><link rel="stylesheet" href="/static/css/app.css"></head><body><header class="topbar">`)

		home := "/index"
		if b.Admin {
			home = "/home"
		}
		p.raw(`<a class="brand" href="` + home + `">Gamy</a>`)

		if b.LoggedIn() {
			links := userNav
			if b.Admin {
				links = adminNav
			}
			p.raw(`<nav>`)
			for _, l := range links {
				p.raw(`<a href="` + l.href + `">`)
				p.text(b.T(l.key))
				p.raw(`</a>`)
			}
			who := b.Name
			if who == "" {
				who = b.Email
			}
			p.raw(`<span class="who">`)
			p.text(who)
			p.raw(`</span><a href="/logout">`)
			p.text(b.T("nav.logout"))
			p.raw(`</a></nav>`)
		}

		p.raw(`<form class="lang" method="post" action="/set-language">`)
		for _, lang := range []string{"es", "en"} {
			p.raw(`<button type="submit" name="lang" value="` + lang + `"`)
			if b.Lang == lang {
				p.raw(` disabled`)
			}
			p.raw(`>` + langLabel[lang] + `</button>`)
		}
		p.raw(`</form></header><main>`)

		if b.Notice != "" {
			p.raw(`<p class="notice">`)
			p.text(b.T(b.Notice))
			p.raw(`</p>`)
		}
		if p.err != nil {
			return p.err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</main></body></html>`)
		return p.err
	})
}

var langLabel = map[string]string{"es": "ES", "en": "EN"}

// htmlWriter запоминает первую ошибку записи.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (p *htmlWriter) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *htmlWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}
