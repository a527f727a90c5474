package handlers

import (
	"context"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/auth"
)

// Интерфейсы сервисов, которые используют обработчики.
// Реализуются типами пакета service и auth.

// Credentials - вход администраторов и пользователей.
type Credentials interface {
	VerifyLocal(ctx context.Context, email, password string) (*model.AdminUser, error)
	AuthorizeGoogleAdmin(ctx context.Context, email string) (*model.AdminUser, error)
	UpsertExternalUser(ctx context.Context, externalID, displayName, email string) (*model.EndUser, error)
}

// AdminAccounts - управление учётными записями администраторов.
type AdminAccounts interface {
	ListAdmins(ctx context.Context) ([]*model.AdminUser, error)
	GetAdmin(ctx context.Context, id int64) (*model.AdminUser, error)
	CreateAdmin(ctx context.Context, in service.AdminInput) (*model.AdminUser, error)
	UpdateAdmin(ctx context.Context, id int64, email, password string) (*model.AdminUser, error)
	DeleteAdmin(ctx context.Context, id int64) error
}

// StopReports - отчёты об остановках.
type StopReports interface {
	Create(ctx context.Context, in service.CreateStopReport) (*model.StopReport, error)
	List(ctx context.Context, statusFilter string) ([]*model.StopReport, error)
	Get(ctx context.Context, id int64) (*service.StopReportDetail, error)
	Image(ctx context.Context, id int64) (*model.Image, error)
	ImageForOwner(ctx context.Context, id, ownerID int64) (*model.Image, error)
	Delete(ctx context.Context, id int64) error
	RequestTransition(ctx context.Context, id int64, requested string) (*model.StopReport, error)
}

// BusReports - отчёты об автобусах.
type BusReports interface {
	Create(ctx context.Context, in service.CreateBusReport) (*model.BusReport, error)
	ListByUnit(ctx context.Context, unit string) ([]*model.BusReport, error)
	GroupByUnit(ctx context.Context) ([]*model.BusUnitSummary, error)
	Get(ctx context.Context, id int64) (*model.BusReport, error)
	Image(ctx context.Context, id int64) (*model.Image, error)
	ImageForOwner(ctx context.Context, id, ownerID int64) (*model.Image, error)
	OverwriteStatus(ctx context.Context, id int64, newStatus string) (*model.BusReport, error)
	Delete(ctx context.Context, id int64) error
}

// News - новости.
type News interface {
	Create(ctx context.Context, in service.CreateNews) (*model.NewsPost, error)
	List(ctx context.Context) ([]*model.NewsPost, error)
	Get(ctx context.Context, id int64) (*model.NewsPost, error)
	Update(ctx context.Context, id int64, in service.UpdateNews) (*model.NewsPost, error)
	Delete(ctx context.Context, id int64) error
	Image(ctx context.Context, id int64) (*model.Image, error)
}

// OwnReports - отчёты текущего пользователя.
type OwnReports interface {
	List(ctx context.Context, ownerID int64) (*service.MyReports, error)
}

// GoogleLogin - OAuth-вход через Google.
type GoogleLogin interface {
	AuthCodeURL(redirectURI, state, verifier string) string
	Exchange(ctx context.Context, code, redirectURI, verifier string) (*auth.Identity, error)
}

var (
	_ Credentials   = (*service.CredentialService)(nil)
	_ AdminAccounts = (*service.CredentialService)(nil)
	_ StopReports   = (*service.StopReportService)(nil)
	_ BusReports    = (*service.BusReportService)(nil)
	_ News          = (*service.NewsService)(nil)
	_ OwnReports    = (*service.MyReportsService)(nil)
	_ GoogleLogin   = (*auth.GoogleClient)(nil)
)
