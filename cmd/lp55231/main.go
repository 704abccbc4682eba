// cmd/lp55231/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"periph.io/x/conn/v3/physic"

	"lp55231-go/drivers/lp55231"
	"lp55231-go/drivers/lp55231/asm"
	"lp55231-go/errcode"
	"lp55231-go/internal/hostbus"
)

// ---------- Configuration ----------

type config struct {
	Bus           string `json:"bus"`
	Address       uint16 `json:"address"`
	SpeedKHz      int    `json:"speed_khz"`
	Engine        int    `json:"engine"`
	Program       string `json:"program"`
	Current       uint8  `json:"current"`
	Verify        bool   `json:"verify"`
	Debug         bool   `json:"debug"`
	BurstWrites   bool   `json:"burst_writes"`
	LoadTimeoutMS int    `json:"load_timeout_ms"`
	Dump          bool   `json:"dump"`
}

func defaults() config {
	return config{
		Bus:      "",
		Address:  lp55231.AddressDefault,
		SpeedKHz: 400,
		Engine:   1,
		Current:  100, // 10 mA
	}
}

// Built-in program: blink D1, D3 and D5 once a second.
var blink = []lp55231.Instruction{
	lp55231.Map(lp55231.D1, lp55231.D3, lp55231.D5),
	lp55231.MuxMapStart{Addr: 0},
	lp55231.MuxLdEnd{Addr: 0},
	lp55231.SetPWM{Level: 0},
	lp55231.Wait{PreScale: lp55231.CT15_625, Ticks: 30},
	lp55231.SetPWM{Level: 255},
	lp55231.Wait{PreScale: lp55231.CT15_625, Ticks: 30},
	lp55231.Branch{Loops: 0, Target: 1},
}

func loadConfig(args []string) (config, error) {
	cfg := defaults()
	fs := flag.NewFlagSet("lp55231", flag.ContinueOnError)
	var (
		path    = fs.String("config", "", "JSON config file; flags override it")
		bus     = fs.String("bus", cfg.Bus, "I2C bus name (\"\" = first)")
		addr    = fs.String("addr", "0x32", "7-bit device address")
		speed   = fs.Int("speed", cfg.SpeedKHz, "bus speed in kHz (0 = leave)")
		engine  = fs.Int("engine", cfg.Engine, "engine to run (1-3)")
		program = fs.String("program", "", "program source file (default: built-in blink)")
		current = fs.Uint("current", uint(cfg.Current), "output current per channel, 0.1 mA steps")
		verify  = fs.Bool("verify", false, "read back every register write")
		debug   = fs.Bool("debug", false, "trace register traffic to stdout")
		burst   = fs.Bool("burst", false, "write program pages with auto-increment")
		timeout = fs.Int("load-timeout", 0, "busy wait bound in ms (0 = driver default)")
		dump    = fs.Bool("dump", false, "read the program back and print it")
	)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *path != "" {
		b, err := os.ReadFile(*path)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", *path, err)
		}
	}
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bus":
			cfg.Bus = *bus
		case "addr":
			var v uint64
			v, err = strconv.ParseUint(*addr, 0, 7)
			cfg.Address = uint16(v)
		case "speed":
			cfg.SpeedKHz = *speed
		case "engine":
			cfg.Engine = *engine
		case "program":
			cfg.Program = *program
		case "current":
			cfg.Current = uint8(*current)
		case "verify":
			cfg.Verify = *verify
		case "debug":
			cfg.Debug = *debug
		case "burst":
			cfg.BurstWrites = *burst
		case "load-timeout":
			cfg.LoadTimeoutMS = *timeout
		case "dump":
			cfg.Dump = *dump
		}
	})
	if err != nil {
		return cfg, fmt.Errorf("-addr: %w", err)
	}
	if cfg.Engine < 1 || cfg.Engine > lp55231.NumEngines {
		return cfg, fmt.Errorf("-engine %d: want 1..%d", cfg.Engine, lp55231.NumEngines)
	}
	return cfg, nil
}

func readProgram(path string) (lp55231.Program, error) {
	ins := blink
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if ins, err = asm.Parse(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return lp55231.Assemble(ins...)
}

// ---------- Main ----------

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fatal("config", err)
	}
	prog, err := readProgram(cfg.Program)
	if err != nil {
		fatal("program", err)
	}

	bus, err := hostbus.Open(cfg.Bus, physic.Frequency(cfg.SpeedKHz)*physic.KiloHertz)
	if err != nil {
		fatal("bus", err)
	}
	defer bus.Close()

	dev := lp55231.New(bus, lp55231.Config{
		Address:      cfg.Address,
		VerifyWrites: cfg.Verify,
		Debug:        cfg.Debug,
		BurstWrites:  cfg.BurstWrites,
		LoadTimeout:  time.Duration(cfg.LoadTimeoutMS) * time.Millisecond,
	})
	engine := lp55231.Engine(cfg.Engine - 1)

	if err := setup(dev, cfg.Current); err != nil {
		fatal("setup", err)
	}
	if err := dev.LoadProgram(engine, prog); err != nil {
		fatal("load", err)
	}
	if cfg.Dump {
		back, err := dev.ReadProgram(len(prog))
		if err != nil {
			fatal("dump", err)
		}
		if err := asm.Disassemble(os.Stdout, back); err != nil {
			fatal("dump", err)
		}
	}
	if err := dev.StartEngine(engine, 0); err != nil {
		fatal("start", err)
	}
	fmt.Printf("%s on %s: %d instructions, %s\n", engine, bus, len(prog), dev.EngineState(engine))
}

func setup(dev *lp55231.Device, current uint8) error {
	if err := dev.Reset(); err != nil {
		return err
	}
	if err := dev.SetEnabled(true); err != nil {
		return err
	}
	// datasheet start-up delay after CHIP_EN
	time.Sleep(500 * time.Microsecond)
	if err := dev.SetMisc(lp55231.Misc{
		Powersave:      true,
		ChargePump:     lp55231.ChargePumpAuto,
		ClockSelection: lp55231.ClockForceInternal,
	}); err != nil {
		return err
	}
	for c := lp55231.D1; c <= lp55231.D9; c++ {
		if err := dev.SetChannelCurrent(c, current); err != nil {
			return err
		}
	}
	return nil
}

func fatal(op string, err error) {
	fmt.Fprintf(os.Stderr, "lp55231: %s: %v (%s)\n", op, err, errcode.Of(err))
	os.Exit(1)
}
