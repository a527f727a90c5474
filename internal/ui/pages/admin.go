package pages

import (
	"github.com/a-h/templ"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/domain/status"
)

// LoginData - страница входа администратора.
type LoginData struct {
	Base
	Email         string
	Error         string
	GoogleEnabled bool
}

// Login - GET / портала администратора.
func Login(data LoginData) templ.Component { return render("login", data.Base, data) }

// HomeData - главная страница администратора.
type HomeData struct {
	Base
}

// Home - GET /home.
func Home(data HomeData) templ.Component { return render("home", data.Base, data) }

// StopReportsData - список отчётов об остановках.
type StopReportsData struct {
	Base
	Reports []*model.StopReport
	// Filter - выбранный статус, пустой - все
	Filter   string
	Statuses []status.StopStatus
	// Action - путь формы фильтра (/view-reports или /reporteParadas)
	Action string
}

// StopReports - список отчётов об остановках с фильтром по статусу.
func StopReports(data StopReportsData) templ.Component { return render("stop_reports", data.Base, data) }

// StopReportData - карточка отчёта об остановке.
type StopReportData struct {
	Base
	Report    *model.StopReport
	Latitude  float64
	Longitude float64
	// Next - единственный допустимый следующий статус, пустой для Resuelto
	Next string
}

// StopReport - GET /ver-reporte/{id}.
func StopReport(data StopReportData) templ.Component { return render("stop_report", data.Base, data) }

// BusUnitsData - отчёты об автобусах, сгруппированные по единице.
type BusUnitsData struct {
	Base
	Units []*model.BusUnitSummary
}

// BusUnits - GET /reporteCamiones.
func BusUnits(data BusUnitsData) templ.Component { return render("bus_units", data.Base, data) }

// BusUnitData - отчёты одной единицы.
type BusUnitData struct {
	Base
	Unit    string
	Reports []*model.BusReport
}

// BusUnit - GET /reportes/unidad/{unidad}.
func BusUnit(data BusUnitData) templ.Component { return render("bus_unit", data.Base, data) }

// BusReportData - карточка отчёта об автобусе.
type BusReportData struct {
	Base
	Report *model.BusReport
	Error  string
}

// BusReport - GET /ver-reporte-camion/{id}.
func BusReport(data BusReportData) templ.Component { return render("bus_report", data.Base, data) }

// NewsListData - список новостей.
type NewsListData struct {
	Base
	Posts []*model.NewsPost
}

// NewsList - GET /noticias (администратор, с редактированием).
func NewsList(data NewsListData) templ.Component { return render("news_list", data.Base, data) }

// NewsFormData - форма публикации или редактирования новости.
// Post == nil - новая публикация.
type NewsFormData struct {
	Base
	Post  *model.NewsPost
	Title string
	Body  string
	Error string
}

// NewsForm - GET /nuevaPubli и GET /editarNoticia/{id}.
func NewsForm(data NewsFormData) templ.Component { return render("news_form", data.Base, data) }

// AdminsData - список администраторов.
type AdminsData struct {
	Base
	Admins []*model.AdminUser
	// CurrentID - администратор текущей сессии
	CurrentID int64
}

// Admins - GET /usuarios.
func Admins(data AdminsData) templ.Component { return render("admins", data.Base, data) }

// AdminFormData - форма создания или редактирования администратора.
// Admin == nil - создание.
type AdminFormData struct {
	Base
	Admin *model.AdminUser
	Email string
	Error string
}

// AdminForm - GET /altaUsuarios и GET /editarUsuario/{id}.
func AdminForm(data AdminFormData) templ.Component { return render("admin_form", data.Base, data) }
