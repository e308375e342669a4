/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"github.com/openshift-kni/songplays-etl/internal/data"
)

// Names of the input datasets, used as metric labels and in the manifest.
const (
	SongDataset = "song_data"
	LogDataset  = "log_data"
)

// Patterns of the objects of the input datasets, relative to the input root.
const (
	SongDataPattern = SongDataset + "/*/*/*/*.json"
	LogDataPattern  = LogDataset + "/*/*/*.json"
)

// SongSchema is the schema of the records of the song dataset.
var SongSchema = data.Schema{
	{Name: "num_songs", Type: data.Integer},
	{Name: "artist_id", Type: data.String},
	{Name: "artist_latitude", Type: data.Double},
	{Name: "artist_longitude", Type: data.Double},
	{Name: "artist_location", Type: data.String},
	{Name: "artist_name", Type: data.String},
	{Name: "song_id", Type: data.String},
	{Name: "title", Type: data.String},
	{Name: "duration", Type: data.Double},
	{Name: "year", Type: data.Integer},
}

// LogSchema is the schema of the records of the listening log dataset. Note that the timestamp
// is read as text.
var LogSchema = data.Schema{
	{Name: "artist", Type: data.String},
	{Name: "auth", Type: data.String},
	{Name: "firstName", Type: data.String},
	{Name: "gender", Type: data.String},
	{Name: "itemInSession", Type: data.Integer},
	{Name: "lastName", Type: data.String},
	{Name: "length", Type: data.Double},
	{Name: "level", Type: data.String},
	{Name: "location", Type: data.String},
	{Name: "method", Type: data.String},
	{Name: "page", Type: data.String},
	{Name: "registration", Type: data.Double},
	{Name: "sessionId", Type: data.Integer},
	{Name: "song", Type: data.String},
	{Name: "status", Type: data.Integer},
	{Name: "ts", Type: data.String},
	{Name: "userAgent", Type: data.String},
	{Name: "userId", Type: data.String},
}

// Projections of the output tables.
var (
	songColumns = []data.Column{
		data.Col("song_id"),
		data.Col("title"),
		data.Col("artist_id"),
		data.Col("year"),
		data.Col("duration"),
	}
	artistColumns = []data.Column{
		data.Col("artist_id"),
		data.Col("artist_name").As("name"),
		data.Col("artist_location").As("location"),
		data.Col("artist_latitude").As("latitude"),
		data.Col("artist_longitude").As("longitude"),
	}
	userColumns = []data.Column{
		data.Col("userId").As("user_id"),
		data.Col("firstName").As("first_name"),
		data.Col("lastName").As("last_name"),
		data.Col("gender"),
		data.Col("level"),
	}
	timeColumns = []data.Column{
		data.Col("timestamp").As("start_time"),
		data.Col("hour"),
		data.Col("day"),
		data.Col("week"),
		data.Col("month"),
		data.Col("year"),
		data.Col("weekday"),
	}
)
