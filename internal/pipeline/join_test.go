/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"

	"github.com/openshift-kni/songplays-etl/internal/data"
	"github.com/openshift-kni/songplays-etl/internal/timeparts"
)

var _ = Describe("Join", func() {
	event := func(artist any, ts string) data.Row {
		return data.Row{
			"artist":    artist,
			"ts":        ts,
			"userId":    "26",
			"level":     "free",
			"sessionId": int32(583),
			"location":  "San Jose-Sunnyvale-Santa Clara, CA",
			"userAgent": "Mozilla/5.0",
			"year":      int32(2018),
			"month":     int32(11),
		}
	}
	song := func(name any, id string) data.Row {
		return data.Row{
			"artist_name": name,
			"artist_id":   "AR" + id,
			"song_id":     "SO" + id,
			"year":        json.Number("1969"),
		}
	}

	It("Keeps only the events that match a song", func() {
		rows := joinSongplays(
			[]data.Row{
				event("The Box Tops", "1541990217796"),
				event("Unknown Band", "1541990258796"),
			},
			[]data.Row{
				song("The Box Tops", "1"),
			},
		)
		Expect(rows).To(HaveLen(1))
		Expect(rows[0]).To(Equal(data.Row{
			"songplay_id": int64(1),
			"start_time":  "1541990217796",
			"user_id":     "26",
			"level":       "free",
			"song_id":     "SO1",
			"artist_id":   "AR1",
			"session_id":  int32(583),
			"location":    "San Jose-Sunnyvale-Santa Clara, CA",
			"user_agent":  "Mozilla/5.0",
			"year":        int32(2018),
			"month":       int32(11),
		}))
	})

	It("Generates one row per matching song", func() {
		rows := joinSongplays(
			[]data.Row{
				event("Casual", "1"),
				event("The Box Tops", "2"),
				event("Casual", "3"),
			},
			[]data.Row{
				song("Casual", "1"),
				song("The Box Tops", "2"),
				song("Casual", "3"),
			},
		)
		Expect(rows).To(HaveLen(5))
		var ids []int64
		var pairs []string
		for _, row := range rows {
			ids = append(ids, row["songplay_id"].(int64))
			pairs = append(pairs, row["start_time"].(string)+"/"+row["song_id"].(string))
		}
		Expect(ids).To(Equal([]int64{1, 2, 3, 4, 5}))
		Expect(pairs).To(Equal([]string{"1/SO1", "1/SO3", "2/SO2", "3/SO1", "3/SO3"}))
	})

	It("Compares artists exactly", func() {
		rows := joinSongplays(
			[]data.Row{event("the box tops", "1"), event("The Box Tops ", "2")},
			[]data.Row{song("The Box Tops", "1")},
		)
		Expect(rows).To(BeEmpty())
	})

	It("Never matches null or non string artists", func() {
		rows := joinSongplays(
			[]data.Row{event(nil, "1"), event(json.Number("42"), "2")},
			[]data.Row{song(nil, "1"), song(json.Number("42"), "2")},
		)
		Expect(rows).To(BeEmpty())
	})
})

var _ = Describe("Time derivation", func() {
	It("Adds the time parts to the events", func() {
		events := []data.Row{{"ts": "1541990217796"}}
		Expect(deriveTimes(events)).To(Succeed())
		Expect(events[0]).To(HaveKeyWithValue("timestamp", "1541990217"))
		Expect(events[0]).To(HaveKeyWithValue("datetime", "2018-11-12 02:36:57.796000"))
		Expect(events[0]).To(HaveKeyWithValue("year", int32(2018)))
		Expect(events[0]).To(HaveKeyWithValue("month", int32(11)))
		Expect(events[0]).To(HaveKeyWithValue("day", int32(12)))
		Expect(events[0]).To(HaveKeyWithValue("hour", int32(2)))
		Expect(events[0]).To(HaveKeyWithValue("week", int32(46)))
		Expect(events[0]).To(HaveKeyWithValue("weekday", "1"))
	})

	It("Fails for events without a valid timestamp", func() {
		events := []data.Row{{"ts": "1541990217796"}, {"ts": nil}}
		err := deriveTimes(events)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("event 2"))
		var timeErr *timeparts.Error
		Expect(errors.As(err, &timeErr)).To(BeTrue())
	})
})
