package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/eccleston-labs/lfg-hackathon/config"
	"github.com/eccleston-labs/lfg-hackathon/handlers"
	"github.com/eccleston-labs/lfg-hackathon/pkg/ai"
	"github.com/eccleston-labs/lfg-hackathon/pkg/geocode"
	"github.com/eccleston-labs/lfg-hackathon/pkg/realtime"
	"github.com/eccleston-labs/lfg-hackathon/routes"
	"github.com/eccleston-labs/lfg-hackathon/store"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	config.Connect()
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Run migrations
	if err := config.Migrations(config.DB); err != nil {
		log.Fatalf("could not run migrations: %v", err)
	}

	ctx := context.Background()

	objects, err := newObjectStore(ctx)
	if err != nil {
		log.Fatalf("could not set up object storage: %v", err)
	}

	bus, err := realtime.NewRedisBus(ctx, config.Getenv("REDIS_ADDR", "localhost:6379"), os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		log.Fatalf("could not connect to redis: %v", err)
	}
	defer bus.Close()

	reports := store.New(config.DB, objects, bus)

	geocoder := geocode.NewClient()
	places := geocode.NewPlaceSearcher(os.Getenv("PLACES_URL"))
	aiClient := ai.NewClient(os.Getenv("OPENAI_API_KEY"))

	// Live consumers: the SSE hub and the in-memory collection, seeded
	// with a full load before subscribing.
	hub := realtime.NewHub()
	live := realtime.NewCollection()
	if initial, err := reports.ListReportsWithPhotos(ctx); err == nil {
		live.Replace(initial)
	} else {
		log.Printf("warning: initial report load failed: %v", err)
	}

	subscriber := realtime.NewSubscriber(bus, reports, hub, live)
	if err := subscriber.Subscribe(ctx); err != nil {
		log.Fatalf("could not subscribe to change events: %v", err)
	}
	defer subscriber.Disconnect()

	api := handlers.NewAPI(reports, geocoder, places, aiClient, hub, live)

	handler := routes.RegisterRoutes(api)
	handlerWithCORS := enableCORS(handler)
	log.Println("Server starting at port", port)
	log.Fatal(http.ListenAndServe(":"+port, handlerWithCORS))
}

// newObjectStore picks the photo backend: GCS when running on Google
// Cloud, MinIO everywhere else.
func newObjectStore(ctx context.Context) (store.ObjectStore, error) {
	useGCS := os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != "" // Cloud Run indicator

	if useGCS {
		return store.NewGCSStore(ctx, config.Getenv("GCS_BUCKET", "media"))
	}

	return store.NewMinioStore(ctx, store.MinioConfig{
		Endpoint:  config.Getenv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    config.Getenv("MINIO_BUCKET", "media"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Required CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-api-key, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		// Handle preflight (OPTIONS)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
