package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

func evaluateStorage(s *model.Scan, _, _ *catalog.Entry) []model.Bottleneck {
	var out []model.Bottleneck

	boot := s.BootDrive()
	if boot != nil && boot.Type.Known() == model.DriveHDD {
		out = append(out, model.Bottleneck{
			ID:            IDStorageHDDBoot,
			Category:      model.CategoryStorage,
			Severity:      model.SeverityCritical,
			Title:         "Windows is installed on a hard disk",
			Description:   fmt.Sprintf("The boot drive %s is a mechanical hard disk.", boot.Model),
			Impact:        "Slow boot, slow game loads and hitching while assets stream from disk",
			Fix:           "Clone the system to an SSD or do a clean install on one. An NVMe SSD is preferred if the board has an M.2 slot.",
			Difficulty:    model.DifficultyMedium,
			EstimatedCost: "$50 - $100",
		})
	}

	if boot != nil {
		if ratio, ok := boot.UsageRatio(); ok && ratio > 0.80 {
			sev := model.SeverityInfo
			if ratio > 0.90 {
				sev = model.SeverityWarning
			}
			out = append(out, model.Bottleneck{
				ID:            IDStorageBootFull,
				Category:      model.CategoryStorage,
				Severity:      sev,
				Title:         "Boot drive is nearly full",
				Description:   fmt.Sprintf("%s is %.0f%% full.", boot.Model, ratio*100),
				Impact:        "SSDs slow down when nearly full, and Windows updates and shader caches may fail",
				Fix:           "Uninstall unused games, run Disk Cleanup and move large files to another drive.",
				Difficulty:    model.DifficultyEasy,
				EstimatedCost: "$0",
			})
		}
	}

	hasNVMe := false
	for _, d := range s.Storage {
		if d.Type.Known() == model.DriveNVMe {
			hasNVMe = true
			break
		}
	}
	if !hasNVMe {
		out = append(out, model.Bottleneck{
			ID:            IDStorageNoNVMe,
			Category:      model.CategoryStorage,
			Severity:      model.SeverityInfo,
			Title:         "No NVMe SSD installed",
			Description:   fmt.Sprintf("None of the %d drive(s) is an NVMe SSD.", len(s.Storage)),
			Impact:        "Longer load times than an NVMe drive, and no DirectStorage benefit",
			Fix:           "Add an NVMe SSD for the OS and the most-played games if the board has an M.2 slot.",
			Difficulty:    model.DifficultyMedium,
			EstimatedCost: "$60 - $120",
		})
	}

	ids := make(map[string]bool)
	for i, d := range s.Storage {
		healthy, ok := d.Healthy()
		if !ok || healthy {
			continue
		}
		id := healthID(d.Model, i, ids)
		out = append(out, model.Bottleneck{
			ID:            id,
			Category:      model.CategoryStorage,
			Severity:      model.SeverityCritical,
			Title:         fmt.Sprintf("Drive health warning: %s", d.Model),
			Description:   fmt.Sprintf("%s reports health status %q.", d.Model, *d.HealthStatus),
			Impact:        "Risk of data loss; failing drives also cause freezes and slow reads",
			Fix:           "Back up the data on this drive now and replace it.",
			Difficulty:    model.DifficultyMedium,
			EstimatedCost: "$50 - $150",
		})
	}
	return out
}

// healthID builds a stable per-drive id from the model name. Repeated ids
// get the lowest free numeric suffix in scan order.
func healthID(driveModel string, index int, seen map[string]bool) string {
	slug := strings.Join(strings.Fields(strings.ToLower(driveModel)), "-")
	if slug == "" {
		slug = "drive-" + strconv.Itoa(index)
	}
	base := IDStorageHealthPrefix + slug
	id := base
	for n := 2; seen[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	seen[id] = true
	return id
}
