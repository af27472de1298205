package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/juju/loggo"

	"github.com/voidshard/drguard/internal/utils"
	"github.com/voidshard/drguard/pkg/database"
	"github.com/voidshard/drguard/pkg/events"
	"github.com/voidshard/drguard/pkg/hypervisor"
	"github.com/voidshard/drguard/pkg/queue"
	"github.com/voidshard/drguard/pkg/structs"
)

const (
	// default to an on disk badger store. Badger locks its directory so only one
	// process (ie. `run`, or a lone `api`) can use it; api + worker need postgres.
	defaultDatabaseURL = "badger:///var/lib/drguard"

	// default to local redis no pass
	defaultQueueURL = "redis://localhost:6379/0"
)

var logger = loggo.GetLogger("drguard.cmd")

// Toggle is a switch given as 1/0, true/false, yes/no or on/off.
//
// It's a struct rather than a bool so the flag parser demands a value, ie.
// "--dry-run=0" rather than the presence of "--dry-run" meaning on.
type Toggle struct {
	on bool
}

func (t *Toggle) UnmarshalFlag(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		t.on = true
	case "0", "false", "no", "off", "":
		t.on = false
	default:
		return fmt.Errorf("expected 1 or 0, got %q", value)
	}
	return nil
}

func (t Toggle) MarshalFlag() (string, error) {
	if t.on {
		return "1", nil
	}
	return "0", nil
}

// On reports whether the switch is on.
func (t Toggle) On() bool {
	return t.on
}

// VMIDs is a comma separated list of VM ids, ie. "100,101".
type VMIDs struct {
	structs.VMIDSet
}

func (v *VMIDs) UnmarshalFlag(value string) error {
	set, err := structs.ParseVMIDSet(value)
	if err != nil {
		return err
	}
	v.VMIDSet = set
	return nil
}

type optsGeneral struct {
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogConfig string `long:"log-config" env:"LOG_CONFIG" default:"<root>=INFO" description:"Logging config, ie. '<root>=INFO;drguard.queue=DEBUG'"`
}

// configureLogging applies the logging config, --debug wins.
func (o *optsGeneral) configureLogging() error {
	cfg := o.LogConfig
	if o.Debug {
		cfg = "<root>=DEBUG"
	}
	return loggo.ConfigureLoggers(cfg)
}

type optsDatabase struct {
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" description:"Database connection string (postgres:// or badger://); badger is single process, use postgres when api & worker run separately (default: badger:///var/lib/drguard)"`
}

func (o *optsDatabase) open() (database.Database, error) {
	if o.DatabaseURL == "" {
		o.DatabaseURL = defaultDatabaseURL
	}
	return database.NewDatabase(&database.Options{URL: o.DatabaseURL})
}

type optsQueue struct {
	QueueURL       string        `long:"queue-url" env:"QUEUE_URL" description:"Redis connection string"`
	QueueTLSCert   string        `long:"queue-tls-cert" env:"QUEUE_TLS_CERT" description:"Path to TLS certificate"`
	QueueTLSKey    string        `long:"queue-tls-key" env:"QUEUE_TLS_KEY" description:"Path to TLS key"`
	QueueTLSCaCert string        `long:"queue-tls-ca-cert" env:"QUEUE_TLS_CA_CERT" description:"Path to TLS CA certificate"`
	QueueWorkers   int           `long:"queue-workers" env:"QUEUE_WORKERS" default:"4" description:"Jobs a worker runs at once"`
	QueueTimeout   time.Duration `long:"queue-task-timeout" env:"QUEUE_TASK_TIMEOUT" default:"15m" description:"Max time a queued execution may take"`
}

// open returns the dispatcher; nil (ie. disabled) unless enabled.
func (o *optsQueue) open(enabled bool) (queue.Dispatcher, error) {
	if !enabled {
		logger.Infof("queue disabled (QUEUE_ENABLED=0), jobs will wait in PENDING")
		return nil, nil
	}
	if o.QueueURL == "" {
		o.QueueURL = defaultQueueURL
	}
	tlsCfg, err := utils.TLSConfig(o.QueueTLSCaCert, o.QueueTLSCert, o.QueueTLSKey, false)
	if err != nil {
		return nil, err
	}
	return queue.NewAsynqQueue(&queue.Options{
		URL:         o.QueueURL,
		TLSConfig:   tlsCfg,
		Workers:     o.QueueWorkers,
		TaskTimeout: o.QueueTimeout,
	})
}

type optsHypervisor struct {
	PVEURL            string        `long:"pve-url" env:"PVE_URL" description:"Proxmox API url, ie. https://pve.example.com:8006"`
	PVEUser           string        `long:"pve-user" env:"PVE_USER" description:"Proxmox user including realm, ie. drguard@pve"`
	PVEPassword       string        `long:"pve-pass" env:"PVE_PASS" description:"Proxmox password"`
	PVEInsecure       Toggle        `long:"pve-insecure" env:"PVE_INSECURE" default:"0" description:"Skip TLS verification of the Proxmox API (labs only)"`
	PVECaCert         string        `long:"pve-ca-cert" env:"PVE_CA_CERT" description:"Path to a CA certificate for the Proxmox API"`
	PVEAuthTimeout    time.Duration `long:"pve-auth-timeout" env:"PVE_AUTH_TIMEOUT" default:"20s" description:"Login timeout"`
	PVERequestTimeout time.Duration `long:"pve-request-timeout" env:"PVE_REQUEST_TIMEOUT" default:"30s" description:"Timeout for read calls"`
	PVERestoreTimeout time.Duration `long:"pve-restore-timeout" env:"PVE_RESTORE_TIMEOUT" default:"600s" description:"Timeout for restore & backup calls"`
}

func (o *optsHypervisor) factory() (hypervisor.Factory, error) {
	tlsCfg, err := utils.TLSConfig(o.PVECaCert, "", "", o.PVEInsecure.On())
	if err != nil {
		return nil, err
	}
	return hypervisor.NewFactory(&hypervisor.Options{
		URL:            o.PVEURL,
		User:           o.PVEUser,
		Password:       o.PVEPassword,
		TLSConfig:      tlsCfg,
		AuthTimeout:    o.PVEAuthTimeout,
		RequestTimeout: o.PVERequestTimeout,
		RestoreTimeout: o.PVERestoreTimeout,
	}), nil
}

type optsPolicy struct {
	ForceDryRun    Toggle `long:"force-dry-run" env:"FORCE_DRY_RUN" default:"0" description:"Force dry-run regardless of DRY_RUN"`
	DryRun         Toggle `long:"dry-run" env:"DRY_RUN" default:"1" description:"Simulate operations instead of calling Proxmox"`
	RequireDryRun  Toggle `long:"require-dry-run" env:"REQUIRE_DRY_RUN" default:"1" description:"Refuse operations unless dry-run is active"`
	AllowVMIDs     VMIDs  `long:"allow-vmids" env:"ALLOW_VMIDS" description:"Comma separated VM ids we may touch, empty for all"`
	RestoreEnabled Toggle `long:"restore-enabled" env:"RESTORE_ENABLED" default:"0" description:"Permit restores"`
	BackupEnabled  Toggle `long:"backup-enabled" env:"BACKUP_ENABLED" default:"1" description:"Permit backups"`
	QueueEnabled   Toggle `long:"queue-enabled" env:"QUEUE_ENABLED" default:"0" description:"Hand jobs to the queue"`
}

// policy converts the flags into the immutable policy passed around at runtime.
func (o *optsPolicy) policy() *structs.Policy {
	p := &structs.Policy{
		ForceDryRun:    o.ForceDryRun.On(),
		DryRun:         o.DryRun.On(),
		RequireDryRun:  o.RequireDryRun.On(),
		AllowedVMIDs:   o.AllowVMIDs.VMIDSet,
		RestoreEnabled: o.RestoreEnabled.On(),
		BackupEnabled:  o.BackupEnabled.On(),
		QueueEnabled:   o.QueueEnabled.On(),
	}
	if p.DryRunActive() {
		logger.Warningf("safe mode: dry-run is active, no changes will be made to any VM")
	}
	return p
}

type optsEvents struct {
	NatsURL string `long:"nats-url" env:"NATS_URL" description:"NATS server(s) to publish job events to, empty to disable"`
}

func (o *optsEvents) publisher(name string) (events.Publisher, error) {
	if o.NatsURL == "" {
		return nil, nil
	}
	return events.NewNATS(o.NatsURL, name)
}

type optsService struct {
	DefaultStorage string `long:"default-storage" env:"DEFAULT_STORAGE" default:"local" description:"Storage restores & backups use when none is given"`
	ListStorage    string `long:"list-storage" env:"LIST_STORAGE" default:"local" description:"Storage searched for backups when none is given"`
}
