// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"readiness-workers/internal/common/validation"
	"readiness-workers/pkg/registry"

	crs "readiness-workers/internal/workers/readiness/calculate-readiness-score"
	raa "readiness-workers/internal/workers/readiness/record-assessment-answer"

	ci "readiness-workers/internal/workers/investor/compare-investors"
	gim "readiness-workers/internal/workers/investor/generate-investor-matches"
	lim "readiness-workers/internal/workers/investor/list-investor-matches"
	pi "readiness-workers/internal/workers/investor/prescreen-investors"
	rie "readiness-workers/internal/workers/investor/record-investor-evaluations"

	"github.com/spf13/cobra"
)

// implementedTaskTypes are the task types the worker manager registers.
var implementedTaskTypes = []string{
	raa.TaskType,
	crs.TaskType,
	gim.TaskType,
	pi.TaskType,
	ci.TaskType,
	rie.TaskType,
	lim.TaskType,
}

var registryPath string

var rootCmd = &cobra.Command{
	Use:           "registry-updater",
	Short:         "Maintain the activity registry",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new activity to the registry",
	Example: `  registry-updater add --id prescreen-investors --display-name "Prescreen Investors" \
    --description "Ranks investors on company profile fit" --category investor --task-type prescreen-investors`,
	RunE: runAdd,
}

var updateCmd = &cobra.Command{
	Use:     "update",
	Short:   "Update an existing activity's field",
	Example: `  registry-updater update --id prescreen-investors --field status --value completed`,
	RunE:    runUpdate,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry file and compile its input schemas",
	RunE:  runValidate,
}

var (
	addActivityFlags registry.Activity
	updateID         string
	updateField      string
	updateValue      string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	f := addCmd.Flags()
	f.StringVar(&addActivityFlags.ID, "id", "", "Activity ID (e.g., prescreen-investors)")
	f.StringVar(&addActivityFlags.DisplayName, "display-name", "", "Display name")
	f.StringVar(&addActivityFlags.Description, "description", "", "Description")
	f.StringVar(&addActivityFlags.Category, "category", "", "Category (readiness or investor)")
	f.StringVar(&addActivityFlags.TaskType, "task-type", "", "Zeebe task type")
	f.StringVar(&addActivityFlags.Version, "version", "1.0.0", "Version")
	f.StringVar(&addActivityFlags.ImplementationStatus, "status", "planned", "Implementation status (planned, in-progress, completed, verified)")
	for _, name := range []string{"id", "display-name", "description", "category", "task-type"} {
		_ = addCmd.MarkFlagRequired(name)
	}

	updateCmd.Flags().StringVar(&updateID, "id", "", "Activity ID to update")
	updateCmd.Flags().StringVar(&updateField, "field", "", "Field to update (status, version, displayName, description, category, taskType, timeout, retries)")
	updateCmd.Flags().StringVar(&updateValue, "value", "", "New value for the field")
	for _, name := range []string{"id", "field", "value"} {
		_ = updateCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(addCmd, updateCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	activity := addActivityFlags
	activity.InputSchema = map[string]interface{}{}
	activity.OutputSchema = map[string]interface{}{}
	activity.ErrorCodes = []string{}
	activity.Timeout = "10s"
	activity.Workflows = []string{}
	activity.Tags = []string{}

	if err := addActivity(registryPath, &activity); err != nil {
		return fmt.Errorf("adding activity: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", activity.ID)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if err := updateActivity(registryPath, updateID, updateField, updateValue); err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", updateID, updateField, updateValue)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	reg, err := validateRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func addActivity(path string, activity *registry.Activity) error {
	reg := &registry.ActivityRegistry{
		Version:    "1.0.0",
		Activities: []registry.Activity{},
	}
	if _, err := os.Stat(path); err == nil {
		if reg, err = registry.LoadRegistry(path); err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat registry: %w", err)
	}

	for _, existing := range reg.Activities {
		if existing.ID == activity.ID {
			return fmt.Errorf("activity with ID %s already exists", activity.ID)
		}
	}

	reg.Activities = append(reg.Activities, *activity)
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var target *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			target = &reg.Activities[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		target.ImplementationStatus = value
	case "version":
		target.Version = value
	case "displayName":
		target.DisplayName = value
	case "description":
		target.Description = value
	case "category":
		target.Category = value
	case "taskType":
		target.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		target.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		target.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, path)
}

// validateRegistry checks required fields, compiles every input schema and
// confirms each implemented task type has an entry.
func validateRegistry(path string) (*registry.ActivityRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Activities) == 0 {
		return nil, fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			return nil, fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return nil, fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return nil, fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return nil, fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if activity.Category == "" {
			return nil, fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
	}

	if _, err := validation.NewInputValidator(reg); err != nil {
		return nil, err
	}

	for _, taskType := range implementedTaskTypes {
		if _, ok := reg.Find(taskType); !ok {
			return nil, fmt.Errorf("implemented task type %s has no registry entry", taskType)
		}
	}

	return reg, nil
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
