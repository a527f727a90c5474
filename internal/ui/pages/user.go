package pages

import (
	"github.com/a-h/templ"

	"github.com/gamy-transporte/reportes/internal/domain/model"
)

// LandingData - стартовая страница портала пользователя.
type LandingData struct {
	Base
	Error string
}

// Landing - GET / портала пользователя.
func Landing(data LandingData) templ.Component { return render("landing", data.Base, data) }

// NewsIndex - GET /index, новости для пользователя.
func NewsIndex(data NewsListData) templ.Component { return render("news_index", data.Base, data) }

// StopFormData - форма отчёта об остановке.
type StopFormData struct {
	Base
	Location string
	Comment  string
	Error    string
}

// StopForm - GET /report.
func StopForm(data StopFormData) templ.Component { return render("stop_form", data.Base, data) }

// BusFormData - форма отчёта об автобусе.
type BusFormData struct {
	Base
	Name        string
	Unit        string
	Route       string
	Description string
	Error       string
}

// BusForm - GET /reporteCamion.
func BusForm(data BusFormData) templ.Component { return render("bus_form", data.Base, data) }

// MyReportsData - отчёты текущего пользователя.
type MyReportsData struct {
	Base
	Stops []*model.StopReport
	Buses []*model.BusReport
}

// MyReports - GET /misReportes.
func MyReports(data MyReportsData) templ.Component { return render("my_reports", data.Base, data) }
