package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/petermazzocco/car-dealership/internal/auth"
	appconfig "github.com/petermazzocco/car-dealership/internal/config"
	"github.com/petermazzocco/car-dealership/internal/contact"
	"github.com/petermazzocco/car-dealership/internal/handlers"
	"github.com/petermazzocco/car-dealership/internal/imaging"
	"github.com/petermazzocco/car-dealership/internal/listing"
	"github.com/petermazzocco/car-dealership/internal/storage"
	"github.com/petermazzocco/car-dealership/internal/store"
	"github.com/petermazzocco/car-dealership/models"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	addr := pflag.String("addr", "", "listen address (overrides ADDR)")
	migrate := pflag.Bool("migrate", true, "create or update database tables on start")
	dev := pflag.Bool("dev", false, "use SQLite, local disk storage and a logging mailer")
	devDir := pflag.String("dev-dir", ".dev", "data directory for --dev")
	pflag.Parse()

	// Initialize environment variables
	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}
	if err := cfg.Validate(*dev); err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	models.Placeholder = cfg.Placeholder

	// Database connection
	db, err := openDB(cfg, *dev, *devDir)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if *migrate {
		if err := store.Migrate(db); err != nil {
			log.Fatalf("Failed to auto migrate models: %v", err)
		}
	}
	cars := store.NewCars(db)
	accounts := store.NewAccounts(db)

	// Image storage
	var blobs listing.Blobs
	var uploadsDir string
	if *dev {
		uploadsDir = filepath.Join(*devDir, "uploads")
		uploadsURL, err := devUploadsURL(cfg.Addr)
		if err != nil {
			log.Fatal(err)
		}
		local, err := storage.NewLocal(uploadsDir, uploadsURL)
		if err != nil {
			log.Fatal(err)
		}
		blobs = local
	} else {
		client, err := newS3Client(cfg)
		if err != nil {
			log.Fatal("ERR CONFIG:", err)
		}
		blobs = storage.NewBlobs(client, cfg.BucketName, cfg.PublicURL)
	}

	var processor listing.Processor
	if cfg.ProcessImages {
		processor = imaging.NewProcessor(cfg.ImageMaxWidth, cfg.ImageQuality)
	}

	// Mail
	var mailer contact.Mailer = contact.LogMailer{}
	if !*dev {
		mailer = contact.NewResendMailer(cfg.ResendAPIKey)
	}

	fetcher := listing.NewFetcher(cars)
	editor := listing.NewEditor(cars, listing.NewUploader(blobs, processor, cfg.UploadWorkers), listing.NewReconciler(blobs))
	relay := contact.NewRelay(mailer, cfg.MailFrom, cfg.MailTo)

	// Session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.SecureCookies
	gothic.Store = sessionStore

	// OAUTH
	if cfg.GoogleKey != "" {
		goth.UseProviders(google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.CallbackURL, "email", "profile"))
	}

	// Chi
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.UpstreamTimeout))

	// Staff auth
	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			handlers.LoginHandler(w, r, accounts, sessionStore)
		})
		r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			handlers.LogoutHandler(w, r, sessionStore)
		})
		r.Get("/{provider}", handlers.BeginOAuthHandler)
		r.Get("/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
			handlers.OAuthCallbackHandler(w, r, accounts, sessionStore, cfg.AdminRedirect)
		})
	})

	// Public catalog and contact
	r.Route("/api", func(r chi.Router) {
		r.Get("/cars", func(w http.ResponseWriter, r *http.Request) {
			handlers.ListCarsHandler(w, r, fetcher)
		})
		r.Get("/cars/incoming", func(w http.ResponseWriter, r *http.Request) {
			handlers.IncomingCarsHandler(w, r, fetcher)
		})
		r.Get("/cars/carousel", func(w http.ResponseWriter, r *http.Request) {
			handlers.CarouselHandler(w, r, fetcher)
		})
		r.Get("/cars/{id}", func(w http.ResponseWriter, r *http.Request) {
			handlers.GetCarHandler(w, r, fetcher)
		})

		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(
				5,
				10*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
			r.Post("/contact", func(w http.ResponseWriter, r *http.Request) {
				handlers.ContactHandler(w, r, relay)
			})
			r.Post("/cars/{id}/inquiry", func(w http.ResponseWriter, r *http.Request) {
				handlers.CarInquiryHandler(w, r, fetcher, relay)
			})
		})

		// Available API routes for signed-in staff
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.UserMiddleware(sessionStore, accounts))
			r.Use(httprate.Limit(
				60,
				1*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
			r.Get("/me", handlers.MeHandler)
			r.Post("/cars", func(w http.ResponseWriter, r *http.Request) {
				handlers.CreateCarHandler(w, r, editor)
			})
			r.Put("/cars/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.UpdateCarHandler(w, r, editor)
			})
			r.Delete("/cars/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.DeleteCarHandler(w, r, editor)
			})
		})
	})

	if uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}

	log.Printf("Starting API server on %s (dev=%t)", cfg.Addr, *dev)
	log.Fatal(http.ListenAndServe(cfg.Addr, otelhttp.NewHandler(r, "car-dealership")))
}

// devUploadsURL is the public URL format for --dev images, served by this
// process. Only the port of addr is used, so ":3000" and "0.0.0.0:3000" both
// give http://localhost:3000/uploads/%s.
func devUploadsURL(addr string) (string, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("listen address %q: %w", addr, err)
	}
	if port == "" {
		return "", fmt.Errorf("listen address %q has no port", addr)
	}
	return "http://" + net.JoinHostPort("localhost", port) + "/uploads/%s", nil
}

func openDB(cfg *appconfig.Config, dev bool, devDir string) (*gorm.DB, error) {
	if dev {
		if err := os.MkdirAll(devDir, 0o755); err != nil {
			return nil, err
		}
		return gorm.Open(sqlite.Open(filepath.Join(devDir, "dealer.db")), &gorm.Config{})
	}
	return gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
}

func newS3Client(cfg *appconfig.Config) (*s3.Client, error) {
	// Create custom HTTP client with TLS config
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			},
		},
	}
	httpClient := &http.Client{Transport: otelhttp.NewTransport(tr), Timeout: cfg.UpstreamTimeout}

	// AWS S3 configuration
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithHTTPClient(httpClient),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	}), nil
}
