// Command test-reality runs every read-only controller operation against a
// live controller and reports which view model fields never get populated,
// which usually means a JSON tag no longer matches the controller.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/lexfrei/unifi-mcp/api/network"
	"github.com/lexfrei/unifi-mcp/internal/config"
	"github.com/lexfrei/unifi-mcp/observability"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file (or use UNIFI_MCP_CONFIG env)")
	envFile    = flag.String("env", ".env", "Path to .env file")
	verbose    = flag.Bool("verbose", false, "Verbose output with the first item of each response as JSON")
	debug      = flag.Bool("debug", false, "Log every HTTP request to stderr")
)

type TestResult struct {
	Operation   string
	Success     bool
	Error       string
	Count       int
	Duration    time.Duration
	EmptyFields []string // Fields that were zero in every returned item
	JSONSample  string
}

func main() {
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigPath: *configPath, EnvFile: *envFile})
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	clientConfig := cfg.Controller.ClientConfig()
	if *debug {
		logger, err := observability.NewZerolog(os.Stderr, "debug", observability.FormatConsole)
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		clientConfig.Logger = logger
	}

	client, err := network.NewWithConfig(clientConfig)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	defer client.Logout(ctx)

	fmt.Println("🧪 Testing unifi-mcp against reality...")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	fmt.Println("📡 Connecting to controller...")
	admin, err := client.Self(ctx)
	if err != nil {
		log.Fatalf("Failed to log in: %v", err)
	}
	fmt.Printf("   Controller: %s\n", cfg.Controller.URL)
	fmt.Printf("   Admin: %s (super: %t)\n", admin.Name, admin.IsSuper)
	fmt.Printf("   Site: %s\n", client.Site())
	fmt.Println()

	var firstDevice string

	results := []TestResult{
		run("ListSites", func() (any, error) { return client.ListSites(ctx) }),
		run("ListDevices", func() (any, error) {
			devices, err := client.ListDevices(ctx)
			if err == nil && len(devices) > 0 {
				firstDevice = devices[0].MAC
			}
			return devices, err
		}),
		run("ListClients (active)", func() (any, error) { return client.ListClients(ctx, network.ClientsActive) }),
		run("ListClients (all)", func() (any, error) { return client.ListClients(ctx, network.ClientsAll) }),
		run("SiteHealth", func() (any, error) {
			health, err := client.SiteHealth(ctx)
			if err != nil {
				return nil, err
			}
			return health.Subsystems, nil
		}),
		run("ListNetworks", func() (any, error) { return client.ListNetworks(ctx) }),
	}

	if firstDevice != "" {
		results = append(results, run("DeviceActivity", func() (any, error) {
			record, err := client.DeviceActivity(ctx, firstDevice)
			if err != nil {
				return nil, err
			}
			return []network.ActivityRecord{*record}, nil
		}))
	}

	// Print summary
	fmt.Println()
	fmt.Println("📊 Test Summary")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	failures, totalIssues := 0, 0
	for _, result := range results {
		status := "✅"
		if !result.Success {
			status = "❌"
			failures++
		} else if len(result.EmptyFields) > 0 {
			status = "⚠️"
		}

		fmt.Printf("%s %s (%d items, %v)\n", status, result.Operation, result.Count, result.Duration)

		if result.Error != "" {
			fmt.Printf("   Error: %s\n", result.Error)
		}

		if len(result.EmptyFields) > 0 {
			fmt.Printf("   ⚠️  Never populated: %d\n", len(result.EmptyFields))
			for _, field := range result.EmptyFields {
				fmt.Printf("      - %s\n", field)
			}
			totalIssues += len(result.EmptyFields)
		}

		if *verbose && result.JSONSample != "" {
			fmt.Printf("   JSON Sample:\n%s\n", indentJSON(result.JSONSample, "      "))
		}

		fmt.Println()
	}

	fmt.Println("=" + strings.Repeat("=", 60))
	switch {
	case failures > 0:
		fmt.Printf("❌ %d operation(s) failed\n", failures)
		os.Exit(1)
	case totalIssues == 0:
		fmt.Println("✅ All operations succeeded and every field was populated.")
	default:
		fmt.Printf("⚠️  %d field(s) were never populated\n", totalIssues)
		fmt.Println()
		fmt.Println("Optional fields are often empty on small sites; check the JSON tags of the rest.")
	}
}

func run(operation string, call func() (any, error)) TestResult {
	start := time.Now()
	result := TestResult{Operation: operation}

	items, err := call()
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true

	val := reflect.ValueOf(items)
	if val.Kind() != reflect.Slice {
		return result
	}

	result.Count = val.Len()
	if result.Count == 0 {
		return result
	}

	result.EmptyFields = findEmptyFields(val)

	if *verbose {
		data, _ := json.MarshalIndent(val.Index(0).Interface(), "", "  ")
		result.JSONSample = string(data)
	}

	return result
}

// findEmptyFields lists the exported struct fields that hold their zero
// value in every element of items.
func findEmptyFields(items reflect.Value) []string {
	elemType := items.Type().Elem()
	if elemType.Kind() != reflect.Struct {
		return nil
	}

	var fields []string
	for i := range elemType.NumField() {
		field := elemType.Field(i)
		if !field.IsExported() {
			continue
		}

		populated := false
		for j := range items.Len() {
			if !items.Index(j).Field(i).IsZero() {
				populated = true
				break
			}
		}

		if !populated {
			fields = append(fields, elemType.Name()+"."+field.Name)
		}
	}

	return fields
}

func indentJSON(jsonStr, indent string) string {
	lines := strings.Split(jsonStr, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
