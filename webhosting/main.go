package main

/*

Web hosting provisioning service.

Consumes lifecycle requests (Activate, Reactivate, Deactivate, Terminate) from Kafka, runs them
against the Plesk panel and publishes the outcome on the results topic.  The same operations are
available over a small authenticated HTTP API, next to the Prometheus metrics.

*/

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"bitbucket.org/telmaxdc/webhosting-provision/kafka"
	"bitbucket.org/telmaxdc/webhosting-provision/linkdb"
	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
	"bitbucket.org/telmaxdc/webhosting-provision/provision"
)

var (
	LogLevel = flag.String("loglevel", "info", "Log Level")
	Listen   = flag.String("listen", ":5015", "HTTP API listen address:port")
	UseTLS   = flag.Bool("tls.enable", false, "Enable TLS")
	TLSCert  = flag.String("tls.cert", "/etc/ssl/webhosting.crt", "API Server Certificate")
	TLSKey   = flag.String("tls.key", "/etc/ssl/private/webhosting.key", "API Server private key")
	APIKey   = flag.String("apikey", "", "API Key used for simple authentication")

	PanelConfig = flag.String("panel.config", "/etc/webhosting/plesk.json", "Plesk panel connection settings")

	KafkaTopic = flag.String("kafka.topic", kafka.RequestTopic, "Kafka topic to consume from")
	KafkaBrk   = flag.String("kafka.brokers", "localhost:9092", "Kafka brokers list separated by commas")
	KafkaGroup = flag.String("kafka.group", "webhosting", "Kafka group id")

	StoreKind       = flag.String("store", "mongo", "Linkage store: mongo, mysql or memory")
	MongoURI        = flag.String("mongouri", "mongodb://localhost:27017", "MongoDB URL for the linkage database")
	MongoDatabase   = flag.String("mongodatabase", "webhosting", "Linkage database name")
	MongoCollection = flag.String("mongocollection", linkdb.DefaultCollection, "Linkage collection name")
	MySQLDSN        = flag.String("mysql.dsn", "", "MySQL DSN of the billing database, user:pass@tcp(host:3306)/db")
	MySQLTable      = flag.String("mysql.table", "websites", "Billing service table")
	MySQLPrefix     = flag.String("mysql.prefix", "website", "Billing service table column prefix")

	DBClient *mongo.Client
	SQLDB    *sql.DB
	Producer *kafka.Producer
	Consumer *kafka.Consumer
)

func main() {
	flag.Parse()
	lvl, err := log.ParseLevel(*LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	config, err := plesk.LoadConfig(*PanelConfig)
	if err != nil {
		log.Fatal(err)
	}
	client := plesk.NewClient(config)

	store, err := openStore()
	if err != nil {
		log.Fatalf("Problem opening %s linkage store: %v", *StoreKind, err)
	}

	brokers := strings.Split(*KafkaBrk, ",")
	topics := strings.Split(*KafkaTopic, ",")
	Producer, err = kafka.StartProducer(brokers)
	if err != nil {
		log.Fatalf("Failed to start Sarama producer: %v", err)
	}

	service := &Service{
		Orchestrator: provision.New(client, store, Producer, config.PlanName),
		Panel:        client,
		Store:        store,
		Results:      Producer,
		APIKey:       *APIKey,
	}

	go func() {
		router := service.Router()
		if *UseTLS {
			log.Warning("Listening on " + *Listen + " TLS")
			log.Fatal(http.ListenAndServeTLS(*Listen, *TLSCert, *TLSKey, router))
		} else {
			log.Warning("Listening on " + *Listen)
			log.Fatal(http.ListenAndServe(*Listen, router))
		}
	}()

	Consumer, err = kafka.StartConsumer(brokers, topics, *KafkaGroup, service.MessageHandler)
	if err != nil {
		log.Fatalf("Error creating consumer group client: %v", err)
	}

	// setup signal catching
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	for s := range sigs {
		log.Debugf("RECEIVED SIGNAL: %s", s)
		if s == syscall.SIGHUP {
			log.Warning("Ignoring SIGHUP")
			continue
		}
		AppCleanup()
		os.Exit(1)
	}
}

func openStore() (linkdb.Store, error) {
	switch *StoreKind {
	case "mongo":
		client, err := linkdb.MongoConnect(context.Background(), *MongoURI)
		if err != nil {
			return nil, err
		}
		DBClient = client
		return linkdb.NewMongoStore(client.Database(*MongoDatabase), *MongoCollection), nil
	case "mysql":
		db, err := linkdb.SQLConnect(*MySQLDSN)
		if err != nil {
			return nil, err
		}
		SQLDB = db
		return linkdb.NewSQLStore(db, *MySQLTable, *MySQLPrefix)
	case "memory":
		log.Warn("Linkage is kept in memory only, restarts lose it")
		return linkdb.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store %q", *StoreKind)
}

// Quit cleanly - close any database connections or other open sockets here.
func AppCleanup() {
	log.Error("Stopping Application")
	if Consumer != nil {
		Consumer.StopConsumer()
	}
	if Producer != nil {
		Producer.Shutdown()
	}
	if DBClient != nil {
		DBClient.Disconnect(context.TODO())
	}
	if SQLDB != nil {
		SQLDB.Close()
	}
}
