package functional

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/testutil"
)

// aCleanEnvironment is a no-op because the Before hook already sets up
// the environment. This step exists so feature files read naturally.
func aCleanEnvironment(ctx context.Context) (context.Context, error) {
	return ctx, nil
}

func theAddOnsPathIsSetToTheGameFolder(ctx context.Context) (context.Context, error) {
	state := getState(ctx)
	ctx, err := iRun(ctx, "coffeeupdate path $GAME")
	if err != nil {
		return ctx, err
	}
	if state.exitCode != 0 {
		return ctx, fmt.Errorf("setting the add-ons path failed (exit %d): %s", state.exitCode, state.stderr)
	}
	return ctx, nil
}

func theAddOnIsInstalled(ctx context.Context, name, version string) error {
	state := getState(ctx)
	dir := filepath.Join(state.addOnsDir(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	toc := fmt.Sprintf("## Title: %s\n## Version: %s\n", name, version)
	return os.WriteFile(filepath.Join(dir, name+".toc"), []byte(toc), 0o644)
}

func theRegistryPublishes(ctx context.Context, name, version string) error {
	return theRegistryPublishesUnder(ctx, name, version, name)
}

// theRegistryPublishesUnder publishes a bundle whose single root folder is
// root, which need not match the add-on name.
func theRegistryPublishesUnder(ctx context.Context, name, version, root string) error {
	data, err := testutil.BuildZip(testutil.AddOnEntries(root, name, version)...)
	if err != nil {
		return err
	}
	getState(ctx).registry.publish(addon.Metadata{Name: name, Version: version}, data)
	return nil
}

func theRegistryListsWithoutBundle(ctx context.Context, name, version string) error {
	getState(ctx).registry.publish(addon.Metadata{Name: name, Version: version}, nil)
	return nil
}

func theRegistryHasNoManifest(ctx context.Context) error {
	r := getState(ctx).registry
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noManifest = true
	return nil
}

func theRegistryServedBundles(ctx context.Context, expected int) error {
	if got := getState(ctx).registry.served(); got != expected {
		return fmt.Errorf("expected %d bundle downloads, got %d", expected, got)
	}
	return nil
}

func theRegistryServedManifests(ctx context.Context, expected int) error {
	if got := getState(ctx).registry.manifestsServed(); got != expected {
		return fmt.Errorf("expected %d manifest downloads, got %d", expected, got)
	}
	return nil
}

// iRun executes a command string, replacing "coffeeupdate" with the test
// binary path and $GAME with the scenario's game folder.
func iRun(ctx context.Context, command string) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}

	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "coffeeupdate" {
		args[0] = state.binPath
	}
	for i, a := range args {
		if a == "$GAME" {
			args[i] = state.gameDir
		}
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = append(os.Environ(),
		"COFFEE_HOME="+state.homeDir,
		"COFFEE_REGISTRY_URL="+state.registry.URL(),
	)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	state.stdout = stdout.String()
	state.stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		state.exitCode = 0
	case errors.As(err, &exitErr):
		state.exitCode = exitErr.ExitCode()
	default:
		return ctx, fmt.Errorf("command execution failed: %w", err)
	}

	return ctx, nil
}

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theOutputDoesNotContain(ctx context.Context, text string) error {
	state := getState(ctx)
	if strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout not to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr to contain %q, got:\n%s", text, state.stderr)
	}
	return nil
}

func theAddOnHasVersion(ctx context.Context, name, version string) error {
	state := getState(ctx)
	path := filepath.Join(state.addOnsDir(), name, name+".toc")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("expected %s to be installed: %w", name, err)
	}
	if !strings.Contains(string(data), "## Version: "+version+"\n") {
		return fmt.Errorf("expected %s version %s, descriptor is:\n%s", name, version, data)
	}
	return nil
}

func theAddOnIsNotInstalled(ctx context.Context, name string) error {
	state := getState(ctx)
	if _, err := os.Stat(filepath.Join(state.addOnsDir(), name)); err == nil {
		return fmt.Errorf("expected %s not to be installed", name)
	}
	return nil
}
