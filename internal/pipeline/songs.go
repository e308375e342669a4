/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/openshift-kni/songplays-etl/internal/data"
	"github.com/openshift-kni/songplays-etl/internal/logging"
	"github.com/openshift-kni/songplays-etl/internal/tables"
)

// ProcessSongData reads the song dataset and writes the songs and artists tables.
func (p *Pipeline) ProcessSongData(ctx context.Context) error {
	ctx = logging.AppendCtx(ctx, slog.String("stage", SongStage))
	start := time.Now()

	songs, err := p.read(ctx, SongStage, SongDataset, SongDataPattern, SongSchema, nil)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Song data loaded", slog.Int("rows", len(songs)))

	result, err := p.write(ctx, tables.Songs, projectRows(songs, songColumns))
	if err != nil {
		return err
	}
	p.logger.InfoContext(
		ctx,
		"Songs table done",
		slog.Int("rows", result.Rows),
		slog.Int("partitions", len(result.Partitions)),
	)

	result, err = p.write(ctx, tables.Artists, projectRows(songs, artistColumns))
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Artists table done", slog.Int("rows", result.Rows))

	p.metrics.StageFinished(SongStage, time.Since(start))
	return nil
}

// projectRows applies a projection to all the rows.
func projectRows(rows []data.Row, columns []data.Column) []data.Row {
	result := make([]data.Row, len(rows))
	for i, row := range rows {
		result[i] = data.ProjectRow(row, columns...)
	}
	return result
}
