package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	addDoctorVacationHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/add_doctor_vacation"
	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	checkAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/check_availability"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	deleteDoctorVacationHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_doctor_vacation"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getDoctorAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_doctor_appointments"
	getDoctorScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_doctor_schedule"
	getPatientAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_patient_appointments"
	getPracticePolicyHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_practice_policy"
	replaceDoctorAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/replace_doctor_availability"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_appointment_status"
	updatePracticePolicyHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_practice_policy"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	policyRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifications"
	patientServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/patientservice"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	doctorsService "github.com/m04kA/SMC-AppointmentService/internal/service/doctors"
	policyService "github.com/m04kA/SMC-AppointmentService/internal/service/policy"
	checkAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/locker"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// publisher общий интерфейс для RabbitMQ и заглушки
type publisher interface {
	Publish(ctx context.Context, event notifications.AppointmentEvent) error
	Close() error
}

// bookingLocker общий интерфейс для redis-блокировки и заглушки
type bookingLocker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded (timezone=%s, min_notice_hours=%d, max_future_booking_days=%d)",
		cfg.Practice.Timezone, cfg.Practice.MinNoticeHours, cfg.Practice.MaxFutureBookingDays)

	// Инициализируем метрики (если включены).
	// nil-коллектор безопасен: dbmetrics и use cases просто ничего не пишут
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txManager := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	doctorRepository := doctorRepo.NewRepository(wrappedDB)
	policyRepository := policyRepo.NewRepository(wrappedDB)

	// Блокировка слотов врача на время бронирования
	var slotLocker bookingLocker = locker.NopLocker{}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}

		slotLocker = locker.NewRedisLocker(
			redisClient,
			cfg.Redis.LockPrefix,
			cfg.Redis.LockTTLDuration(),
			cfg.Redis.LockMaxWaitDuration(),
		)
		log.Info("Redis booking lock enabled (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Redis.LockTTLDuration())
	} else {
		log.Warn("Redis disabled, booking relies on database constraints only")
	}

	// События приёмов
	var eventPublisher publisher = notifications.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbit, err := notifications.NewRabbitPublisher(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second,
		)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		eventPublisher = rabbit
		log.Info("RabbitMQ publisher enabled (exchange=%s)", cfg.RabbitMQ.Exchange)
	}
	defer eventPublisher.Close()

	// Клиент сервиса пациентов (nil-интерфейс, если выключен)
	var patientClient createAppointmentUC.PatientServiceClient
	if cfg.PatientService.Enabled {
		patientClient = patientServiceClient.NewClient(
			cfg.PatientService.URL,
			time.Duration(cfg.PatientService.Timeout)*time.Second,
			log,
		)
		log.Info("PatientService client initialized (url=%s, timeout=%ds)",
			cfg.PatientService.URL, cfg.PatientService.Timeout)
	}

	// Инициализируем сервисы
	policySvc := policyService.NewService(
		policyRepository,
		doctorRepository,
		cfg.Practice.DefaultPolicy,
		log,
	)
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		doctorRepository,
		eventPublisher,
		txManager,
		appointmentsService.RealTimeProvider{},
		log,
	)
	doctorSvc := doctorsService.NewService(
		doctorRepository,
		txManager,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		doctorRepository,
		policySvc,
		patientClient,
		slotLocker,
		eventPublisher,
		metricsCollector,
		txManager,
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		doctorRepository,
		policySvc,
		slotLocker,
		eventPublisher,
		metricsCollector,
		txManager,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		doctorRepository,
		policySvc,
		log,
	)
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		appointmentRepository,
		doctorRepository,
		policySvc,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getDoctorSchedule := getDoctorScheduleHandler.NewHandler(doctorSvc, log)
	getPracticePolicy := getPracticePolicyHandler.NewHandler(policySvc, log)

	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentSvc, log)
	getPatientAppointments := getPatientAppointmentsHandler.NewHandler(appointmentSvc, log)
	getDoctorAppointments := getDoctorAppointmentsHandler.NewHandler(appointmentSvc, log)
	replaceDoctorAvailability := replaceDoctorAvailabilityHandler.NewHandler(doctorSvc, log)
	addDoctorVacation := addDoctorVacationHandler.NewHandler(doctorSvc, log)
	deleteDoctorVacation := deleteDoctorVacationHandler.NewHandler(doctorSvc, log)
	updatePracticePolicy := updatePracticePolicyHandler.NewHandler(policySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Предпросмотр: можно ли записаться на указанное время
	api.HandleFunc("/doctors/{doctorId}/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// Свободные слоты врача на дату
	api.HandleFunc("/doctors/{doctorId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Рабочие окна и отпуска врача
	api.HandleFunc("/doctors/{doctorId}/schedule", getDoctorSchedule.Handle).Methods(http.MethodGet)

	// Политика записи практики
	api.HandleFunc("/practices/{practiceId}/policy", getPracticePolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Приёмы ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)

	// История приёмов пациента
	protected.HandleFunc("/patients/{patientId}/appointments", getPatientAppointments.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для врачей) ---
	protected.HandleFunc("/doctors/{doctorId}/appointments", getDoctorAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/availability", replaceDoctorAvailability.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/doctors/{doctorId}/vacations", addDoctorVacation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/doctors/{doctorId}/vacations/{vacationId}", deleteDoctorVacation.Handle).Methods(http.MethodDelete)

	// Обновление политики практики
	protected.HandleFunc("/practices/{practiceId}/policy", updatePracticePolicy.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
