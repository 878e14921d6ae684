package artifacts

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/files"
)

// GetArtifactName builds the artifact base name.
// Example: check_2025-09-15T08:28:46Z.checkup-artifact.
func GetArtifactName(command string, t time.Time) string {
	ts := t.UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s_%s.checkup-artifact", command, ts)
}

// SaveArtifactJSON writes the provided result to <artifacts>/<base>.json.
// Returns the full path.
func SaveArtifactJSON(cfg *config.Config, logger hclog.Logger, command string, result interface{}) (string, error) {
	dir := config.GetCheckupArtifactsHome(cfg)
	base := GetArtifactName(command, time.Now())
	path := filepath.Join(dir, base+".json")

	resultData, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return path, fmt.Errorf("error marshaling the result data: %w", err)
	}

	if err := files.CreateFolderIfNotExists(dir); err != nil {
		return path, err
	}
	if err := files.WriteJsonFile(path, resultData); err != nil {
		return path, fmt.Errorf("error writing result to artifact file: %w", err)
	}
	logger.Info("artifact saved to file", "path", path)

	return path, nil
}
