package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/gogamastore/storefront/internal/flagx"
)

var knownFlags = []string{
	"-a", "-h", "-driver", "-d", "-m", "-n", "-s", "-t", "-seed",
	"-u", "-p", "-b", "-g", "-e", "-l",
}

// parseFlags overlays command-line flags onto config. Only the flags listed
// in knownFlags are considered; anything else in os.Args is ignored.
//
//	-a      HTTP bind address
//	-h      gRPC health bind address
//	-driver store driver (postgres|mongo)
//	-d      PostgreSQL DSN
//	-m / -n MongoDB URI / database
//	-s      JWT HMAC secret
//	-t      access token validity, minutes
//	-seed   seed the sample catalog (use -seed=false to disable)
//	-u -p -b -g -e  S3 user, password, bucket, region, endpoint
//	-l      log level
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "h", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.StoreDriver, "driver", config.StoreDriver, "store driver: postgres or mongo")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database name")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	ttl := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.BoolVar(&config.SeedSampleData, "seed", config.SeedSampleData, "seed sample categories and products")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*ttl) * time.Minute
	return nil
}
