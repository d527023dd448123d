// Command tesla-ble-session exercises the session façade end-to-end over a
// real BLE adapter: connect to a vehicle by VIN, and either fetch one
// vehicle-data category or request enrollment of a new key. It implements
// only the two operations the façade supports, not a general command
// grammar.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/shlex"

	"github.com/go-ble-vehicle/teslable/internal/log"
	"github.com/go-ble-vehicle/teslable/pkg/connector/ble"
	"github.com/go-ble-vehicle/teslable/pkg/protocol"
	"github.com/go-ble-vehicle/teslable/pkg/vehicle"
)

var categories = map[string]vehicle.StateCategory{
	"charge":                    vehicle.StateCategoryCharge,
	"climate":                   vehicle.StateCategoryClimate,
	"drive":                     vehicle.StateCategoryDrive,
	"location":                  vehicle.StateCategoryLocation,
	"closures":                  vehicle.StateCategoryClosures,
	"charge-schedule":           vehicle.StateCategoryChargeSchedule,
	"preconditioning-schedule":  vehicle.StateCategoryPreconditioningSchedule,
	"tire-pressure":             vehicle.StateCategoryTirePressure,
	"media":                     vehicle.StateCategoryMedia,
	"media-detail":              vehicle.StateCategoryMediaDetail,
	"software-update":           vehicle.StateCategorySoftwareUpdate,
	"parental-controls":         vehicle.StateCategoryParentalControls,
}

var formFactors = map[string]vehicle.KeyFormFactor{
	"android": vehicle.KeyFormFactorAndroid,
	"ios":     vehicle.KeyFormFactorIOS,
	"nfc":     vehicle.KeyFormFactorNFCCard,
	"cloud":   vehicle.KeyFormFactorCloud,
}

var roles = map[string]vehicle.KeyRole{
	"owner":  vehicle.KeyRoleOwner,
	"driver": vehicle.KeyRoleDriver,
}

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
}

func execute(ctx context.Context, car *vehicle.Vehicle, priv protocol.ECDHPrivateKey, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command")
	}
	switch args[0] {
	case "get-state":
		if len(args) != 2 {
			return errors.New("usage: get-state <category>")
		}
		category, ok := categories[args[1]]
		if !ok {
			return fmt.Errorf("unrecognized category %q", args[1])
		}
		if priv == nil {
			return protocol.ErrRequiresKey
		}
		result, err := car.GetState(ctx, category, priv)
		if err != nil {
			return err
		}
		fmt.Printf("%+v\n", result.VehicleData)
		return nil
	case "add-key":
		if len(args) != 4 {
			return errors.New("usage: add-key <role> <form-factor> <public-key-hex>")
		}
		role, ok := roles[args[1]]
		if !ok {
			return fmt.Errorf("unrecognized role %q", args[1])
		}
		formFactor, ok := formFactors[args[2]]
		if !ok {
			return fmt.Errorf("unrecognized form factor %q", args[2])
		}
		pub, err := protocol.PublicKeyBytesFromHex(args[3])
		if err != nil {
			return fmt.Errorf("invalid public key: %w", err)
		}
		return car.SendAddKeyRequest(ctx, pub.Bytes(), role, formFactor)
	default:
		return fmt.Errorf("unrecognized command %q", args[0])
	}
}

func runInteractiveShell(car *vehicle.Vehicle, priv protocol.ECDHPrivateKey, timeout time.Duration) int {
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Printf("> "); scanner.Scan(); fmt.Printf("> ") {
		args, err := shlex.Split(scanner.Text())
		if err != nil {
			writeErr("invalid command: %s", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := execute(ctx, car, priv, args); err != nil {
			writeErr("command failed: %s", err)
		}
		cancel()
	}
	return 0
}

func main() {
	status := 1
	defer func() { os.Exit(status) }()

	var (
		vin            string
		keyFile        string
		debug          bool
		interactive    bool
		commandTimeout time.Duration
		connTimeout    time.Duration
	)
	flag.StringVar(&vin, "vin", "", "VIN of the vehicle to connect to")
	flag.StringVar(&keyFile, "key-file", "", "path to a PEM-encoded EC private key")
	flag.BoolVar(&debug, "debug", false, "enable verbose debug logging")
	flag.BoolVar(&interactive, "i", false, "run an interactive session, reading commands from stdin")
	flag.DurationVar(&commandTimeout, "command-timeout", 10*time.Second, "timeout for a single command")
	flag.DurationVar(&connTimeout, "connect-timeout", 20*time.Second, "timeout for the initial BLE connection and handshake")
	flag.Parse()

	if debug {
		log.SetLevel(log.LevelDebug)
	}
	if vin == "" {
		writeErr("missing required -vin flag")
		return
	}

	var priv protocol.ECDHPrivateKey
	if keyFile != "" {
		k, err := protocol.LoadPrivateKey(keyFile)
		if err != nil {
			writeErr("loading private key: %s", err)
			return
		}
		priv = k
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	conn, err := ble.NewConnection(connectCtx, vin)
	if err != nil {
		writeErr("connecting to %s: %s", vin, err)
		return
	}

	car := vehicle.New(conn)
	if err := car.Connect(connectCtx); err != nil {
		writeErr("starting session: %s", err)
		return
	}
	defer car.Disconnect()

	if interactive {
		status = runInteractiveShell(car, priv, commandTimeout)
		return
	}

	args := flag.Args()
	ctx, cancelCmd := context.WithTimeout(context.Background(), commandTimeout)
	defer cancelCmd()
	if err := execute(ctx, car, priv, args); err != nil {
		if protocol.MayHaveSucceeded(err) {
			writeErr("couldn't verify success: %s", err)
		} else if errors.Is(err, protocol.ErrNoSession) || errors.Is(err, protocol.ErrRequiresKey) {
			writeErr("this command requires -key-file")
		} else {
			writeErr("command failed: %s", err)
		}
		return
	}
	status = 0
}
