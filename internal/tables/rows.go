/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package tables

import (
	"github.com/openshift-kni/songplays-etl/internal/data"
)

// Song is the row stored in the files of the songs table. The year and artist_id columns are in
// the partition directories.
type Song struct {
	SongID   *string  `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title    *string  `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Duration *float64 `parquet:"name=duration, type=DOUBLE"`
}

// Artist is the row stored in the files of the artists table.
type Artist struct {
	ArtistID  *string  `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name      *string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Location  *string  `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8"`
	Latitude  *float64 `parquet:"name=latitude, type=DOUBLE"`
	Longitude *float64 `parquet:"name=longitude, type=DOUBLE"`
}

// User is the row stored in the files of the users table.
type User struct {
	UserID    *string `parquet:"name=user_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	FirstName *string `parquet:"name=first_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	LastName  *string `parquet:"name=last_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Gender    *string `parquet:"name=gender, type=BYTE_ARRAY, convertedtype=UTF8"`
	Level     *string `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// TimeRow is the row stored in the files of the time table. The year and month columns are in the
// partition directories.
type TimeRow struct {
	StartTime *string `parquet:"name=start_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	Hour      *int32  `parquet:"name=hour, type=INT32"`
	Day       *int32  `parquet:"name=day, type=INT32"`
	Week      *int32  `parquet:"name=week, type=INT32"`
	Weekday   *string `parquet:"name=weekday, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Songplay is the row stored in the files of the songplays table. The year and month columns are
// in the partition directories.
type Songplay struct {
	SongplayID int64   `parquet:"name=songplay_id, type=INT64"`
	StartTime  *string `parquet:"name=start_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	UserID     *string `parquet:"name=user_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Level      *string `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8"`
	SongID     *string `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ArtistID   *string `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	SessionID  *int32  `parquet:"name=session_id, type=INT32"`
	Location   *string `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8"`
	UserAgent  *string `parquet:"name=user_agent, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Songs is the table of songs, partitioned by year and artist.
var Songs = &Definition{
	Name:        "song_table",
	Columns:     []string{"song_id", "title", "artist_id", "year", "duration"},
	PartitionBy: []string{"year", "artist_id"},
	Prototype:   new(Song),
	Convert: func(row data.Row) any {
		return &Song{
			SongID:   data.GetString(row, "song_id"),
			Title:    data.GetString(row, "title"),
			Duration: data.GetFloat64(row, "duration"),
		}
	},
}

// Artists is the table of artists. It contains one row per song record.
var Artists = &Definition{
	Name:      "artists_table",
	Columns:   []string{"artist_id", "name", "location", "latitude", "longitude"},
	Prototype: new(Artist),
	Convert: func(row data.Row) any {
		return &Artist{
			ArtistID:  data.GetString(row, "artist_id"),
			Name:      data.GetString(row, "name"),
			Location:  data.GetString(row, "location"),
			Latitude:  data.GetFloat64(row, "latitude"),
			Longitude: data.GetFloat64(row, "longitude"),
		}
	},
}

// Users is the table of users. It contains one row per song play event.
var Users = &Definition{
	Name:      "users_table",
	Columns:   []string{"user_id", "first_name", "last_name", "gender", "level"},
	Prototype: new(User),
	Convert: func(row data.Row) any {
		return &User{
			UserID:    data.GetString(row, "user_id"),
			FirstName: data.GetString(row, "first_name"),
			LastName:  data.GetString(row, "last_name"),
			Gender:    data.GetString(row, "gender"),
			Level:     data.GetString(row, "level"),
		}
	},
}

// Time is the table of timestamps of song play events, partitioned by year and month.
var Time = &Definition{
	Name: "time_table",
	Columns: []string{
		"start_time", "hour", "day", "week", "month", "year", "weekday",
	},
	PartitionBy: []string{"year", "month"},
	Prototype:   new(TimeRow),
	Convert: func(row data.Row) any {
		return &TimeRow{
			StartTime: data.GetString(row, "start_time"),
			Hour:      data.GetInt32(row, "hour"),
			Day:       data.GetInt32(row, "day"),
			Week:      data.GetInt32(row, "week"),
			Weekday:   data.GetString(row, "weekday"),
		}
	},
}

// Songplays is the fact table of song play events, partitioned by year and month.
var Songplays = &Definition{
	Name: "songplays_table",
	Columns: []string{
		"songplay_id", "start_time", "user_id", "level", "song_id", "artist_id",
		"session_id", "location", "user_agent", "month", "year",
	},
	PartitionBy: []string{"year", "month"},
	Prototype:   new(Songplay),
	Convert: func(row data.Row) any {
		id, _ := row["songplay_id"].(int64)
		return &Songplay{
			SongplayID: id,
			StartTime:  data.GetString(row, "start_time"),
			UserID:     data.GetString(row, "user_id"),
			Level:      data.GetString(row, "level"),
			SongID:     data.GetString(row, "song_id"),
			ArtistID:   data.GetString(row, "artist_id"),
			SessionID:  data.GetInt32(row, "session_id"),
			Location:   data.GetString(row, "location"),
			UserAgent:  data.GetString(row, "user_agent"),
		}
	},
}
