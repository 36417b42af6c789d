// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"mergington-activities/pkg/registry"
)

const defaultPath = "configs/activities.yaml"

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return errUsage
	}

	switch args[0] {
	case "add":
		return runAdd(args[1:], out)
	case "update":
		return runUpdate(args[1:], out)
	case "validate":
		return runValidate(args[1:], out)
	case "list":
		return runList(args[1:], out)
	case "help", "-h", "--help":
		help(out)
		return nil
	default:
		help(out)
		return errUsage
	}
}

func runAdd(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("add", flag.ContinueOnError)
	cmd.SetOutput(out)
	path := cmd.String("path", defaultPath, "Path to seed file (.yaml, .yml or .json)")
	name := cmd.String("name", "", "Activity name (e.g., Chess Club)")
	description := cmd.String("description", "", "Description")
	schedule := cmd.String("schedule", "", "Schedule (e.g., \"Fridays, 3:30 PM - 5:00 PM\")")
	maxParticipants := cmd.Int("max", 0, "Maximum participants")
	participants := cmd.String("participants", "", "Comma separated participant emails")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *name == "" || *schedule == "" || *maxParticipants <= 0 {
		cmd.Usage()
		return fmt.Errorf("name, schedule and a positive max are required for add")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0", Activities: []registry.Activity{}}
	}
	if reg.Find(*name) >= 0 {
		return fmt.Errorf("activity %q already exists", *name)
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		Name:            *name,
		Description:     *description,
		Schedule:        *schedule,
		MaxParticipants: *maxParticipants,
		Participants:    splitList(*participants),
	})
	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added activity: %s\n", *name)
	return nil
}

func runUpdate(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("update", flag.ContinueOnError)
	cmd.SetOutput(out)
	path := cmd.String("path", defaultPath, "Path to seed file")
	name := cmd.String("name", "", "Activity name to update")
	field := cmd.String("field", "", "Field to update (description, schedule, max_participants, participants)")
	value := cmd.String("value", "", "New value for the field")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *name == "" || *field == "" {
		cmd.Usage()
		return fmt.Errorf("name and field are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	i := reg.Find(*name)
	if i < 0 {
		return fmt.Errorf("activity %q not found", *name)
	}

	a := &reg.Activities[i]
	switch *field {
	case "description":
		a.Description = *value
	case "schedule":
		a.Schedule = *value
	case "max_participants", "max":
		n, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid max_participants value: %w", err)
		}
		a.MaxParticipants = n
	case "participants":
		a.Participants = splitList(*value)
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated activity %s, field %s\n", *name, *field)
	return nil
}

func runValidate(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(out)
	path := cmd.String("path", defaultPath, "Path to seed file")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	result, err := registry.Validate(reg)
	if err != nil {
		return err
	}
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s: %s\n", e.Field, e.Message)
		}
		return fmt.Errorf("registry validation failed with %d error(s)", len(result.Errors))
	}
	fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func runList(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("list", flag.ContinueOnError)
	cmd.SetOutput(out)
	path := cmd.String("path", defaultPath, "Path to seed file")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENROLLED\tMAX\tSCHEDULE")
	for _, a := range reg.Activities {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", a.Name, len(a.Participants), a.MaxParticipants, a.Schedule)
	}
	return tw.Flush()
}

// save validates before writing so the tool never produces a seed file the
// server would refuse.
func save(reg *registry.ActivityRegistry, path string) error {
	result, err := registry.Validate(reg)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("refusing to save: %s", result.Error())
	}

	reg.LastUpdated = time.Now().UTC().Format("2006-01-02")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return registry.SaveRegistry(path, reg)
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func help(out io.Writer) {
	fmt.Fprint(out, `
Usage: registry-updater <command> [flags]

Commands:
  add       Add a new activity to the seed file
  update    Update an existing activity's field
  validate  Validate the seed file
  list      List activities in the seed file
  help      Show this help message

Examples:
  registry-updater add -name "Robotics Club" -schedule "Wednesdays, 3:30 PM - 5:00 PM" -max 16 -description "Build and program robots"
  registry-updater update -name "Chess Club" -field max_participants -value 14
  registry-updater validate -path configs/activities.yaml
  registry-updater list

Use 'registry-updater <command> -h' for more information about a command.
`)
}
