package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/auth"
	"carelink.id/clinicapi/internal/config"
	"carelink.id/clinicapi/internal/middleware"
	"carelink.id/clinicapi/internal/modules/profile/lifecycle"
	"carelink.id/clinicapi/pkg/response"
	"carelink.id/clinicapi/pkg/storage"

	apptHttp "carelink.id/clinicapi/internal/modules/appointment/delivery/http"
	apptRepo "carelink.id/clinicapi/internal/modules/appointment/repository"
	apptService "carelink.id/clinicapi/internal/modules/appointment/service"

	deptHttp "carelink.id/clinicapi/internal/modules/department/delivery/http"
	deptRepo "carelink.id/clinicapi/internal/modules/department/repository"
	deptService "carelink.id/clinicapi/internal/modules/department/service"

	labHttp "carelink.id/clinicapi/internal/modules/labreport/delivery/http"
	labRepo "carelink.id/clinicapi/internal/modules/labreport/repository"
	labService "carelink.id/clinicapi/internal/modules/labreport/service"

	notiHttp "carelink.id/clinicapi/internal/modules/notification/delivery/http"
	notifRepo "carelink.id/clinicapi/internal/modules/notification/repository"
	notifService "carelink.id/clinicapi/internal/modules/notification/service"

	previsitHttp "carelink.id/clinicapi/internal/modules/previsit/delivery/http"
	previsitRepo "carelink.id/clinicapi/internal/modules/previsit/repository"
	previsitService "carelink.id/clinicapi/internal/modules/previsit/service"

	profileHttp "carelink.id/clinicapi/internal/modules/profile/delivery/http"
	profileRepo "carelink.id/clinicapi/internal/modules/profile/repository"
	profileService "carelink.id/clinicapi/internal/modules/profile/service"

	searchService "carelink.id/clinicapi/internal/modules/search/service"

	userHttp "carelink.id/clinicapi/internal/modules/user/delivery/http"
	userRepo "carelink.id/clinicapi/internal/modules/user/repository"
	userService "carelink.id/clinicapi/internal/modules/user/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize cloudinary storage")
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := searchService.NewDoctorSearchService(meiliClient)

	tokens := auth.NewTokenService()
	var revoker auth.Revoker
	if redisClient != nil {
		revoker = auth.NewRedisRevoker(redisClient)
	}

	usersRepo := userRepo.NewUserRepository(db, lifecycle.NewManager())

	authSvc := userService.NewAuthService(usersRepo, tokens, revoker)
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(usersRepo, fileStorage, tokens, revoker, searchSvc)
	userHandler := userHttp.NewUserHandler(userSvc)

	departmentsRepo := deptRepo.NewDepartmentRepository(db)
	departmentSvc := deptService.NewDepartmentService(departmentsRepo)
	departmentHandler := deptHttp.NewDepartmentHandler(departmentSvc)

	doctorsRepo := profileRepo.NewDoctorProfileRepository(db)
	doctorSvc := profileService.NewDoctorProfileService(doctorsRepo, fileStorage, searchSvc)
	doctorHandler := profileHttp.NewDoctorProfileHandler(doctorSvc)

	patientsRepo := profileRepo.NewPatientProfileRepository(db)
	patientSvc := profileService.NewPatientProfileService(patientsRepo)
	patientHandler := profileHttp.NewPatientProfileHandler(patientSvc)

	notificationsRepo := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationsRepo, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	reportTypesRepo := labRepo.NewReportTypeRepository(db)
	reportTypeSvc := labService.NewReportTypeService(reportTypesRepo)
	reportTypeHandler := labHttp.NewReportTypeHandler(reportTypeSvc)

	labReportsRepo := labRepo.NewLabReportRepository(db)
	labReportSvc := labService.NewLabReportService(labReportsRepo, patientsRepo, fileStorage, notificationSvc)
	labReportHandler := labHttp.NewLabReportHandler(labReportSvc)

	appointmentsRepo := apptRepo.NewAppointmentRepository(db)
	appointmentSvc := apptService.NewAppointmentService(appointmentsRepo, usersRepo, notificationSvc)
	appointmentHandler := apptHttp.NewAppointmentHandler(appointmentSvc)

	questionsRepo := previsitRepo.NewPreVisitQuestionRepository(db)
	questionSvc := previsitService.NewPreVisitQuestionService(questionsRepo, db)
	questionHandler := previsitHttp.NewPreVisitQuestionHandler(questionSvc)

	previsitReportsRepo := previsitRepo.NewPreVisitReportRepository(db)
	previsitReportSvc := previsitService.NewPreVisitReportService(previsitReportsRepo, appointmentsRepo)
	previsitReportHandler := previsitHttp.NewPreVisitReportHandler(previsitReportSvc)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	authMiddleware := middleware.NewAuthMiddleware(tokens, revoker)

	api := router.Group("/api")

	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/token", authHandler.ObtainPair)
	api.POST("/token/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/logout", authHandler.Logout)

		admin := protected.Group("")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/users", userHandler.Create)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			admin.POST("/departments", departmentHandler.Create)
			admin.PUT("/departments/:id", departmentHandler.Update)
			admin.DELETE("/departments/:id", departmentHandler.Delete)

			admin.POST("/reporttypes", reportTypeHandler.Create)
			admin.PUT("/reporttypes/:id", reportTypeHandler.Update)
			admin.DELETE("/reporttypes/:id", reportTypeHandler.Delete)
		}

		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.Get)

		protected.GET("/departments", departmentHandler.List)
		protected.GET("/departments/:id", departmentHandler.Get)

		protected.GET("/doctors", doctorHandler.List)
		protected.GET("/doctors/search", doctorHandler.Search)
		protected.GET("/doctors/department/:department_id", doctorHandler.ListByDepartment)
		protected.GET("/doctors/:id", doctorHandler.Get)
		protected.PUT("/doctors/:id", doctorHandler.Update)
		protected.DELETE("/doctors/:id", doctorHandler.Delete)

		protected.GET("/patients", patientHandler.List)
		protected.GET("/patients/:patient_id", patientHandler.Get)
		protected.PUT("/patients/:patient_id", patientHandler.Update)
		protected.POST("/patients/:patient_id/lab-reports", labReportHandler.Upload)

		protected.GET("/reporttypes", reportTypeHandler.List)
		protected.GET("/reporttypes/:id", reportTypeHandler.Get)

		protected.GET("/labreports", labReportHandler.List)
		protected.GET("/labreports/patient/:patient_id", labReportHandler.ListByPatient)
		protected.GET("/labreports/:id", labReportHandler.Get)
		protected.PUT("/labreports/:id", labReportHandler.Update)
		protected.DELETE("/labreports/:id", labReportHandler.Delete)
		protected.GET("/lab-reports/type/:report_type_id", labReportHandler.ListByReportType)

		protected.POST("/appointments", appointmentHandler.Create)
		protected.GET("/appointments", appointmentHandler.List)
		protected.GET("/appointments/patient", appointmentHandler.ListForPatient)
		protected.GET("/appointments/patient/:patient_id", appointmentHandler.ListForPatient)
		protected.GET("/appointments/:id", appointmentHandler.Get)
		protected.PUT("/appointments/:id", appointmentHandler.Update)
		protected.DELETE("/appointments/:id", appointmentHandler.Delete)

		protected.POST("/previsitquestions", questionHandler.Create)
		protected.GET("/previsitquestions", questionHandler.List)
		protected.GET("/previsitquestions/:id", questionHandler.Get)
		protected.PUT("/previsitquestions/:id", questionHandler.Update)
		protected.DELETE("/previsitquestions/:id", questionHandler.Delete)

		protected.POST("/previsitreports", previsitReportHandler.Create)
		protected.GET("/previsitreports", previsitReportHandler.List)
		protected.GET("/previsitreports/:appointment_id", previsitReportHandler.Get)
		protected.PUT("/previsitreports/:appointment_id", previsitReportHandler.Update)
		protected.DELETE("/previsitreports/:appointment_id", previsitReportHandler.Delete)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
