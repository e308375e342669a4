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

	"github.com/openshift-kni/songplays-etl/internal/data"
	"github.com/openshift-kni/songplays-etl/internal/logging"
	"github.com/openshift-kni/songplays-etl/internal/tables"
	"github.com/openshift-kni/songplays-etl/internal/timeparts"
)

// ProcessLogData reads the listening log dataset, keeps the song play events and writes the users
// and time tables. Then it reads the song dataset again, joins it with the events and writes the
// songplays table.
func (p *Pipeline) ProcessLogData(ctx context.Context) error {
	ctx = logging.AppendCtx(ctx, slog.String("stage", LogStage))
	start := time.Now()

	events, err := p.read(ctx, LogStage, LogDataset, LogDataPattern, LogSchema, p.selectEvent)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Log data loaded", slog.Int("events", len(events)))

	result, err := p.write(ctx, tables.Users, projectRows(events, userColumns))
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Users table done", slog.Int("rows", result.Rows))

	err = deriveTimes(events)
	if err != nil {
		return err
	}
	result, err = p.write(ctx, tables.Time, projectRows(events, timeColumns))
	if err != nil {
		return err
	}
	p.logger.InfoContext(
		ctx,
		"Time table done",
		slog.Int("rows", result.Rows),
		slog.Int("partitions", len(result.Partitions)),
	)

	songs, err := p.read(ctx, LogStage, SongDataset, SongDataPattern, nil, nil)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Song data loaded", slog.Int("rows", len(songs)))

	songplays := joinSongplays(events, songs)
	p.logger.InfoContext(ctx, "Song data and log data merged", slog.Int("rows", len(songplays)))

	result, err = p.write(ctx, tables.Songplays, songplays)
	if err != nil {
		return err
	}
	p.logger.InfoContext(
		ctx,
		"Songplays table done",
		slog.Int("rows", result.Rows),
		slog.Int("partitions", len(result.Partitions)),
	)

	p.metrics.StageFinished(LogStage, time.Since(start))
	return nil
}

// selectEvent evaluates the log filter for one event.
func (p *Pipeline) selectEvent(ctx context.Context, event data.Row) (bool, error) {
	selected, err := p.filter.Matches(event, p.variables...)
	if err != nil {
		return false, fmt.Errorf(
			"failed to evaluate log filter '%s': %w",
			p.filter.Source(), err,
		)
	}
	return selected, nil
}

// deriveTimes adds to each event the values derived from its 'ts' field: the timestamp in seconds,
// the datetime and the calendar parts. An event without a valid timestamp aborts the run.
func deriveTimes(events []data.Row) error {
	for i, event := range events {
		parts, err := timeparts.FromValue(event["ts"])
		if err != nil {
			return fmt.Errorf("failed to process event %d of the log data: %w", i+1, err)
		}
		event["timestamp"] = parts.Timestamp
		event["datetime"] = parts.Datetime
		event["year"] = parts.Year
		event["month"] = parts.Month
		event["day"] = parts.Day
		event["hour"] = parts.Hour
		event["week"] = parts.Week
		event["weekday"] = parts.Weekday
	}
	return nil
}

// joinSongplays joins the events with the songs where the artist of the event is equal to the
// artist name of the song. Artists that aren't strings never match. An event that matches
// several songs generates one row per song. The identifiers are assigned once all the rows have
// been generated, starting with one.
func joinSongplays(events, songs []data.Row) []data.Row {
	index := map[string][]data.Row{}
	for _, song := range songs {
		name, ok := song["artist_name"].(string)
		if !ok {
			continue
		}
		index[name] = append(index[name], song)
	}
	var result []data.Row
	for _, event := range events {
		artist, ok := event["artist"].(string)
		if !ok {
			continue
		}
		for _, song := range index[artist] {
			result = append(result, data.Row{
				"start_time": event["ts"],
				"user_id":    event["userId"],
				"level":      event["level"],
				"song_id":    song["song_id"],
				"artist_id":  song["artist_id"],
				"session_id": event["sessionId"],
				"location":   event["location"],
				"user_agent": event["userAgent"],
				"month":      event["month"],
				"year":       event["year"],
			})
		}
	}
	for i, row := range result {
		row["songplay_id"] = int64(i + 1)
	}
	return result
}
