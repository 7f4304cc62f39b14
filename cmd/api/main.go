package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/qcc-workforce/attendance-backend-go/internal/config"
	appHTTP "github.com/qcc-workforce/attendance-backend-go/internal/handler/http"
	auditPkg "github.com/qcc-workforce/attendance-backend-go/internal/pkg/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/cron"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/database"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/jwt"
	"github.com/qcc-workforce/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/qcc-workforce/attendance-backend-go/internal/service/attendance"
	deviceService "github.com/qcc-workforce/attendance-backend-go/internal/service/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/fraud"
	leaveService "github.com/qcc-workforce/attendance-backend-go/internal/service/leave"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/proximity"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/qrtoken"
	siteService "github.com/qcc-workforce/attendance-backend-go/internal/service/site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		fmt.Println("Error loading timezone:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	recordRepo := postgresql.NewAttendanceRecordRepository(db)
	siteRepo := postgresql.NewSiteRepository(db)
	leaveRepo := postgresql.NewLeaveStatusRepository(db)
	sessionRepo := postgresql.NewDeviceSessionRepository(db)
	violationRepo := postgresql.NewSecurityViolationRepository(db)
	auditRepo := postgresql.NewAuditLogRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	signer, err := qrtoken.NewSigner(cfg.QRToken.Secret, cfg.QRToken.TTL)
	if err != nil {
		fmt.Println("Error creating token signer:", err)
		return
	}

	recorder := auditPkg.NewRecorder(auditRepo, violationRepo, 0)
	defer recorder.Close()

	detector := fraud.NewDetector(sessionRepo, recorder, cfg.Fraud.ActivityWindow)
	resolver := proximity.NewResolver(proximity.DefaultPolicy())

	attendanceSvc := attendanceService.NewAttendanceService(
		recordRepo,
		siteRepo,
		leaveRepo,
		detector,
		resolver,
		signer,
		recorder,
		loc,
	)
	siteSvc := siteService.NewSiteService(siteRepo, signer, recorder)
	leaveSvc := leaveService.NewStatusService(leaveRepo, recorder)
	deviceSvc := deviceService.NewDeviceService(sessionRepo, violationRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	siteHandler := appHTTP.NewSiteHandler(siteSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	deviceHandler := appHTTP.NewDeviceHandler(deviceSvc)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(recordRepo, recorder, loc, cfg.Cron.SweepInterval, cfg.Cron.SweepBatchSize)
	attendanceJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		cfg.App.Env,
		cfg.App.AllowedOrigins,
		attendanceHandler,
		siteHandler,
		leaveHandler,
		deviceHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
