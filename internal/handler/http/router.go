package http

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	User         UserHandler
	Attendance   AttendanceHandler
	Shift        ShiftHandler
	Request      RequestHandler
	Leave        LeaveHandler
	CompOff      CompOffHandler
	Batch        BatchHandler
	Notification NotificationHandler
	Dashboard    DashboardHandler
	Activity     ActivityHandler
}

// RouterOptions carries the cross-cutting middleware dependencies.
type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	CronSecret     string
	UploadsDir     string
	UploadsURL     string // path prefix; absolute URLs are served elsewhere
	Authorizer     middleware.Authorizer
	Limiter        *middleware.RateLimiter
	Idempotency    *middleware.Idempotency
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Cron-Secret"},
		ExposedHeaders:   []string{"Content-Disposition", "Idempotent-Replayed", "Retry-After"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(activity.WithIP(r.Context(), clientIP(r))))
		})
	})

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if prefix := strings.TrimSuffix(opts.UploadsURL, "/"); opts.UploadsDir != "" && strings.HasPrefix(prefix, "/") {
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(opts.UploadsDir))))
	}

	can := func(p user.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(opts.Authorizer, p)
	}
	limited := func(r chi.Router) chi.Router {
		if opts.Limiter == nil {
			return r
		}
		return r.With(opts.Limiter.Handler)
	}
	idem := func(r chi.Router) chi.Router {
		if opts.Idempotency == nil {
			return r
		}
		return r.With(opts.Idempotency.Handler)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			limited(r).Post("/login", h.Auth.Login)
			limited(r).Post("/admin/signup", h.Auth.AdminSignup)
			r.Get("/admin/exists", h.Auth.CheckAdmin)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/login/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
		})

		// External scheduler
		r.Route("/cron", func(r chi.Router) {
			r.Use(middleware.CronSecret(opts.CronSecret))
			r.Post("/{job}", h.Batch.Cron)
		})

		// SSE authenticates with a short-lived query token
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/me", func(r chi.Router) {
				r.With(can(user.PermissionViewOwnProfile)).Get("/", h.User.GetProfile)
				r.With(can(user.PermissionEditProfileDirect)).Put("/", h.User.UpdateProfile)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionEditOwnProfile))
					r.Post("/photo", h.User.UploadPhoto)
					r.Put("/password", h.User.ChangePassword)
					idem(r).Post("/profile-requests", h.User.SubmitProfileUpdate)
					r.Get("/profile-requests", h.User.MyProfileUpdates)
					r.Post("/profile-requests/{id}/cancel", h.User.CancelProfileUpdate)
				})
			})

			r.Route("/profile-requests", func(r chi.Router) {
				r.With(can(user.PermissionEmployeeViewAll)).Get("/", h.User.ListProfileUpdates)
				r.With(can(user.PermissionEmployeeManage)).Post("/{id}/review", h.User.ReviewProfileUpdate)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(can(user.PermissionEmployeeViewAll)).Get("/", h.User.List)
				r.With(can(user.PermissionEmployeeViewAll)).Get("/{id}", h.User.Get)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionEmployeeManage))
					idem(r).Post("/", h.User.Create)
					r.Put("/{id}", h.User.Update)
					r.Delete("/{id}", h.User.Deactivate)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceCreate))
					idem(limited(r)).Post("/punch-in", h.Attendance.PunchIn)
					idem(limited(r)).Post("/punch-out", h.Attendance.PunchOut)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceViewOwn))
					r.Get("/today", h.Attendance.Today)
					r.Get("/my", h.Attendance.GetMyAttendance)
					r.Get("/off-day-stats", h.Attendance.OffDayStats)
				})
				r.With(can(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.List)
				r.With(can(user.PermissionAttendanceManage)).Put("/{id}", h.Attendance.Update)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionReportsView))
					r.Get("/report", h.Attendance.MonthlyReport)
					r.Get("/export", h.Attendance.Export)
				})
			})

			r.Route("/regularizations", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceCreate))
					idem(r).Post("/", h.Request.ApplyRegularization)
					r.Get("/my", h.Request.MyRegularizations)
					r.Post("/{id}/cancel", h.Request.CancelRegularization)
				})
				r.With(can(user.PermissionAttendanceViewAll)).Get("/", h.Request.ListRegularizations)
				r.With(can(user.PermissionAttendanceApprove)).Post("/{id}/review", h.Request.ReviewRegularization)
			})

			r.Route("/wfh", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceCreate))
					idem(r).Post("/", h.Request.ApplyWFH)
					r.Get("/my", h.Request.MyWFH)
					r.Get("/today", h.Request.WFHToday)
					r.Post("/{id}/cancel", h.Request.CancelWFH)
				})
				r.With(can(user.PermissionAttendanceViewAll)).Get("/", h.Request.ListWFH)
				r.With(can(user.PermissionAttendanceApprove)).Post("/{id}/review", h.Request.ReviewWFH)
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/", h.Shift.ListShifts)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceManage))
					r.Post("/", h.Shift.CreateShift)
					r.Put("/{id}", h.Shift.UpdateShift)
					r.Delete("/{id}", h.Shift.DeleteShift)
				})
			})

			r.Route("/office-locations", func(r chi.Router) {
				r.Get("/", h.Shift.ListLocations)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceManage))
					r.Post("/", h.Shift.CreateLocation)
					r.Put("/{id}", h.Shift.UpdateLocation)
					r.Delete("/{id}", h.Shift.DeleteLocation)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/types", func(r chi.Router) {
					r.Get("/", h.Leave.ListLeaveTypes)
					r.Group(func(r chi.Router) {
						r.Use(can(user.PermissionLeaveManageTypes))
						r.Post("/", h.Leave.CreateLeaveType)
						r.Put("/{id}", h.Leave.UpdateLeaveType)
						r.Delete("/{id}", h.Leave.DeleteLeaveType)
					})
				})

				r.Route("/balances", func(r chi.Router) {
					r.With(can(user.PermissionLeaveViewOwn)).Get("/my", h.Leave.GetMyBalance)
					r.Group(func(r chi.Router) {
						r.Use(can(user.PermissionLeaveManage))
						r.Get("/", h.Leave.ListBalances)
						r.Put("/{id}", h.Leave.UpdateBalance)
						r.Post("/initialize", h.Leave.InitializeBalances)
					})
				})

				r.Route("/requests", func(r chi.Router) {
					r.Group(func(r chi.Router) {
						r.Use(can(user.PermissionLeaveCreate))
						idem(r).Post("/", h.Leave.Apply)
						r.Post("/{id}/cancel", h.Leave.CancelRequest)
						r.Post("/cancel-for-date", h.Leave.CancelForDate)
					})
					r.Group(func(r chi.Router) {
						r.Use(can(user.PermissionLeaveViewOwn))
						r.Get("/my", h.Leave.GetMyRequests)
						r.Get("/today", h.Leave.Today)
					})
					r.With(can(user.PermissionReportsView)).Get("/export", h.Leave.Export)
					r.Group(func(r chi.Router) {
						r.Use(can(user.PermissionLeaveViewAll))
						r.Get("/", h.Leave.ListRequests)
						r.Get("/{id}", h.Leave.GetRequest)
					})
					r.With(can(user.PermissionLeaveApprove)).Post("/{id}/review", h.Leave.Review)
					r.With(can(user.PermissionLeaveManage)).Put("/{id}", h.Leave.AdminUpdate)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.Leave.ListHolidays)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionLeaveManageTypes))
					r.Post("/", h.Leave.CreateHoliday)
					r.Put("/{id}", h.Leave.UpdateHoliday)
					r.Delete("/{id}", h.Leave.DeleteHoliday)
				})
			})

			r.Route("/comp-offs", func(r chi.Router) {
				r.With(can(user.PermissionCompOffViewOwn)).Get("/my", h.CompOff.GetMine)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionCompOffManage))
					r.Get("/", h.CompOff.List)
					idem(r).Post("/", h.CompOff.Grant)
					r.Post("/{id}/cancel", h.CompOff.Cancel)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkRead)
				r.Post("/read-all", h.Notification.MarkAllRead)
				r.Delete("/read", h.Notification.ClearRead)
				r.Delete("/{id}", h.Notification.Delete)
				r.Get("/preferences", h.Notification.GetPreferences)
				r.Put("/preferences", h.Notification.UpdatePreference)
				r.Post("/sse-token", h.Notification.GetSSEToken)
			})

			r.With(can(user.PermissionReportsView)).Get("/dashboard", h.Dashboard.GetDashboard)
			r.With(can(user.PermissionActivityView)).Get("/activities", h.Activity.List)

			r.Route("/batch", func(r chi.Router) {
				r.Use(can(user.PermissionBatchRun))
				r.Get("/runs", h.Batch.ListRuns)
				r.Post("/{job}", h.Batch.Trigger)
			})
		})
	})
	return r
}
