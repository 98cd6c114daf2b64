package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
)

var flagNames = []string{
	"-a", "-d", "-s", "-k", "-t", "-l", "-r", "-rp",
	"-b", "-m", "-mu", "-mp", "-f", "-n", "-x",
}

// FlagNames lists every flag the server configuration reads from the command
// line, the JSON config path flags included. Tools sharing the command line
// use it to tell their own arguments apart.
func FlagNames() []string {
	return append(append([]string{}, flagNames...), "-c", "-config")
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session cookie secret
//	-k string   link HMAC key
//	-t int      session validity, minutes
//	-l int      link validity, minutes
//	-r string   Redis address
//	-rp string  Redis password
//	-b string   public base URL
//	-m string   SMTP address (host:port)
//	-mu string  SMTP user
//	-mp string  SMTP password
//	-f string   mail sender address
//	-n string   platform name
//	-x string   anonymized email domain
//
// os.Args is filtered with flagx.FilterArgs first so that flags meant for
// other components (such as -c) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session secret key")
	fs.StringVar(&config.HMACKey, "k", config.HMACKey, "link HMAC key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	linkValidity := fs.Int("l", int(config.LinkValidityDuration.Minutes()), "link validity (in minutes)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "rp", config.RedisPassword, "redis password")
	fs.StringVar(&config.BaseURL, "b", config.BaseURL, "public base URL")
	fs.StringVar(&config.SMTPAddr, "m", config.SMTPAddr, "SMTP address")
	fs.StringVar(&config.SMTPUser, "mu", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "mp", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.MailFrom, "f", config.MailFrom, "mail sender address")
	fs.StringVar(&config.PlatformName, "n", config.PlatformName, "platform name")
	fs.StringVar(&config.AnonymizedEmailDomain, "x", config.AnonymizedEmailDomain, "anonymized email domain")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.LinkValidityDuration = time.Duration(*linkValidity) * time.Minute
}
