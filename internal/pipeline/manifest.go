/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openshift-kni/songplays-etl/internal/storage"
)

// ManifestDir is the directory of the output where the run manifests are written.
const ManifestDir = "_runs"

// Manifest is the summary of a run written to the output.
type Manifest struct {
	RunID    string           `yaml:"run_id"`
	Started  time.Time        `yaml:"started"`
	Finished time.Time        `yaml:"finished"`
	Input    string           `yaml:"input,omitempty"`
	Output   string           `yaml:"output,omitempty"`
	Mode     string           `yaml:"mode"`
	Codec    string           `yaml:"codec"`
	Datasets []DatasetSummary `yaml:"datasets"`
	Tables   []TableSummary   `yaml:"tables"`
}

// DatasetSummary describes one read of an input dataset.
type DatasetSummary struct {
	Name      string `yaml:"name"`
	Stage     string `yaml:"stage"`
	Files     int    `yaml:"files"`
	Rows      int    `yaml:"rows"`
	Kept      int    `yaml:"kept"`
	Malformed int    `yaml:"malformed"`
	Coerced   int    `yaml:"coerced"`
}

// TableSummary describes what was written for one table.
type TableSummary struct {
	Name       string             `yaml:"name"`
	Rows       int                `yaml:"rows"`
	Skipped    bool               `yaml:"skipped,omitempty"`
	Partitions []PartitionSummary `yaml:"partitions,omitempty"`
}

// PartitionSummary describes one file of a table.
type PartitionSummary struct {
	Path string `yaml:"path,omitempty"`
	Key  string `yaml:"key"`
	Rows int    `yaml:"rows"`
	Size int    `yaml:"size"`
}

// ManifestKey returns the key of the manifest of a run, relative to the output.
func ManifestKey(runID string) string {
	return storage.Join(ManifestDir, runID+".yaml")
}

func (p *Pipeline) writeManifest(ctx context.Context, started, finished time.Time) error {
	manifest := Manifest{
		RunID:    p.runID.String(),
		Started:  started,
		Finished: finished,
		Input:    p.inputURL,
		Output:   p.outputURL,
		Mode:     string(p.mode),
		Codec:    string(p.codec),
		Datasets: p.datasets,
		Tables:   make([]TableSummary, len(p.tables)),
	}
	for i, table := range p.tables {
		summary := TableSummary{
			Name:       table.Table,
			Rows:       table.Rows,
			Skipped:    table.Skipped,
			Partitions: make([]PartitionSummary, len(table.Partitions)),
		}
		for j, partition := range table.Partitions {
			summary.Partitions[j] = PartitionSummary{
				Path: partition.Path,
				Key:  partition.Key,
				Rows: partition.Rows,
				Size: partition.Size,
			}
		}
		manifest.Tables[i] = summary
	}
	content, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	key := ManifestKey(manifest.RunID)
	err = p.output.Put(ctx, key, content)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	p.logger.DebugContext(ctx, "Wrote manifest", slog.String("key", key))
	return nil
}
