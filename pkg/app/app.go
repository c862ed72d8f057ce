// Package app wires the services, scheduler, and event consumers together.
package app

import (
	"log/slog"

	"github.com/amirasaad/banking/pkg/config"
	"github.com/amirasaad/banking/pkg/consumer"
	"github.com/amirasaad/banking/pkg/domain/events"
	"github.com/amirasaad/banking/pkg/eventbus"
	"github.com/amirasaad/banking/pkg/notification"
	"github.com/amirasaad/banking/pkg/repository"
	accountsvc "github.com/amirasaad/banking/pkg/service/account"
	authsvc "github.com/amirasaad/banking/pkg/service/auth"
	"github.com/amirasaad/banking/pkg/service/scheduler"
	transactionsvc "github.com/amirasaad/banking/pkg/service/transaction"
	usersvc "github.com/amirasaad/banking/pkg/service/user"
)

// Deps contains the infrastructure dependencies the application needs.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Logger   *slog.Logger
}

// App aggregates the wired services.
type App struct {
	Deps               *Deps
	Config             *config.App
	AuthService        *authsvc.Service
	UserService        *usersvc.Service
	AccountService     *accountsvc.Service
	TransactionService *transactionsvc.Service
	Scheduler          *scheduler.Scheduler
	Emails             *notification.EmailSender
}

// New wires the services and registers the event consumers on the bus.
func New(deps *Deps, cfg *config.App) *App {
	emails := notification.NewEmailSender(
		cfg.Email.From, cfg.Email.MaxPerWindow, cfg.Email.Window, deps.Logger)
	transactions := transactionsvc.New(deps.Uow, deps.EventBus, deps.Logger)
	users := usersvc.New(deps.Uow, deps.Logger)

	a := &App{
		Deps:               deps,
		Config:             cfg,
		AuthService:        authsvc.New(deps.Uow, cfg.Jwt, deps.Logger),
		UserService:        users,
		AccountService:     accountsvc.New(deps.Uow, deps.Logger),
		TransactionService: transactions,
		Scheduler: scheduler.New(
			deps.Uow, transactions, emails, cfg.Scheduler.Interval, deps.Logger),
		Emails: emails,
	}
	a.setupEventBus()
	return a
}

// setupEventBus subscribes the audit and notification consumer groups to
// transaction outcome events.
func (a *App) setupEventBus() {
	audit := consumer.NewAuditConsumer(a.Deps.Uow, a.Deps.Logger)
	notify := consumer.NewNotificationConsumer(a.UserService, a.Emails, a.Deps.Logger)
	a.Deps.EventBus.Subscribe(events.TypeTransaction, audit.Handle)
	a.Deps.EventBus.Subscribe(events.TypeTransaction, notify.Handle)
}
