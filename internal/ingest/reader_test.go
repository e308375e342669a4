/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"go.uber.org/mock/gomock"

	"github.com/openshift-kni/songplays-etl/internal/data"
	"github.com/openshift-kni/songplays-etl/internal/storage"
)

var _ = Describe("Reader", func() {
	var (
		ctx    context.Context
		bucket storage.Bucket
	)

	schema := data.Schema{
		{Name: "artist", Type: data.String},
		{Name: "page", Type: data.String},
		{Name: "sessionId", Type: data.Integer},
		{Name: "ts", Type: data.String},
	}

	put := func(key, content string) {
		ExpectWithOffset(1, bucket.Put(ctx, key, []byte(content))).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		memory := afero.NewMemMapFs()
		Expect(memory.MkdirAll("/input", 0o755)).To(Succeed())
		bucket, err = storage.NewFileSystem().
			SetLogger(logger).
			SetFs(memory).
			SetRoot("/input").
			Build()
		Expect(err).ToNot(HaveOccurred())
	})

	It("Can't be created without a bucket", func() {
		_, err := NewReader().
			SetLogger(logger).
			SetPattern("*.json").
			Build()
		Expect(err).To(MatchError(ContainSubstring("bucket")))
	})

	It("Reads objects in key order and lines in file order", func() {
		put("log_data/2018/11/2018-11-02-events.json",
			`{"artist":"C","page":"NextSong","sessionId":3,"ts":1541106106796}`+"\n")
		put("log_data/2018/11/2018-11-01-events.json",
			`{"artist":"A","page":"NextSong","sessionId":1,"ts":1541105830796}`+"\n"+
				"\n"+
				`{"artist":"B","page":"Home","sessionId":2,"ts":1541106000000}`)
		put("log_data/2018/11/notes.txt", "not json")

		reader, err := NewReader().
			SetLogger(logger).
			SetBucket(bucket).
			SetPattern("log_data/*/*/*.json").
			SetSchema(schema).
			Build()
		Expect(err).ToNot(HaveOccurred())
		stream, err := reader.Read(ctx)
		Expect(err).ToNot(HaveOccurred())
		rows, err := data.Collect(ctx, stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(rows).To(Equal([]data.Row{
			{"artist": "A", "page": "NextSong", "sessionId": int32(1), "ts": "1541105830796"},
			{"artist": "B", "page": "Home", "sessionId": int32(2), "ts": "1541106000000"},
			{"artist": "C", "page": "NextSong", "sessionId": int32(3), "ts": "1541106106796"},
		}))
		Expect(reader.Stats()).To(Equal(Stats{Files: 2, Rows: 3}))
	})

	It("Replaces values that don't match the schema with null", func() {
		put("log_data/a/b/c.json", `{"artist":null,"page":"NextSong","sessionId":"x","ts":"1"}`)
		reader, err := NewReader().
			SetLogger(logger).
			SetBucket(bucket).
			SetPattern("log_data/*/*/*.json").
			SetSchema(schema).
			Build()
		Expect(err).ToNot(HaveOccurred())
		stream, err := reader.Read(ctx)
		Expect(err).ToNot(HaveOccurred())
		rows, err := data.Collect(ctx, stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0]["artist"]).To(BeNil())
		Expect(rows[0]["sessionId"]).To(BeNil())
		Expect(rows[0]["ts"]).To(Equal("1"))
		Expect(reader.Stats().Coerced).To(Equal(1))
	})

	It("Returns all null rows for malformed lines", func() {
		put("log_data/a/b/c.json", "{\"artist\":\n[1,2]\n")
		reader, err := NewReader().
			SetLogger(logger).
			SetBucket(bucket).
			SetPattern("log_data/*/*/*.json").
			SetSchema(schema).
			Build()
		Expect(err).ToNot(HaveOccurred())
		stream, err := reader.Read(ctx)
		Expect(err).ToNot(HaveOccurred())
		rows, err := data.Collect(ctx, stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(rows).To(Equal([]data.Row{schema.Empty(), schema.Empty()}))
		Expect(reader.Stats().Malformed).To(Equal(2))
	})

	It("Keeps raw values when there is no schema", func() {
		put("song_data/A/A/A/TRAAAAK128F9318786.json",
			`{"num_songs":1,"artist_id":"ARJIE2Y1187B994AB7","artist_name":"Line Renaud",`+
				`"song_id":"SOUPIRU12A6D4FA1E1","duration":152.92036,"year":0}`)
		reader, err := NewReader().
			SetLogger(logger).
			SetBucket(bucket).
			SetPattern("song_data/*/*/*/*.json").
			Build()
		Expect(err).ToNot(HaveOccurred())
		stream, err := reader.Read(ctx)
		Expect(err).ToNot(HaveOccurred())
		rows, err := data.Collect(ctx, stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0]).To(HaveKeyWithValue("artist_name", "Line Renaud"))
		Expect(rows[0]).To(HaveKeyWithValue("duration", json.Number("152.92036")))
		Expect(rows[0]).To(HaveKeyWithValue("year", json.Number("0")))
	})

	It("Fails when nothing matches", func() {
		put("song_data/README.md", "# Songs")
		reader, err := NewReader().
			SetLogger(logger).
			SetBucket(bucket).
			SetPattern("song_data/*/*/*/*.json").
			Build()
		Expect(err).ToNot(HaveOccurred())
		_, err = reader.Read(ctx)
		var storageErr *storage.Error
		Expect(errors.As(err, &storageErr)).To(BeTrue())
		Expect(storageErr.Op).To(Equal(storage.OpList))
		Expect(storageErr.Key).To(Equal("song_data/*/*/*/*.json"))
		Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())
		Expect(reader.Stats().Files).To(BeZero())
	})

	It("Returns storage errors", func() {
		ctrl := gomock.NewController(GinkgoT())
		mock := storage.NewMockBucket(ctrl)
		failure := &storage.Error{
			Op:  storage.OpOpen,
			Key: "log_data/a/b/c.json",
			Err: errors.New("connection reset"),
		}
		mock.EXPECT().
			List(gomock.Any(), "log_data/").
			Return([]storage.Object{{Key: "log_data/a/b/c.json"}}, nil)
		mock.EXPECT().
			Open(gomock.Any(), "log_data/a/b/c.json").
			Return(nil, failure)
		reader, err := NewReader().
			SetLogger(logger).
			SetBucket(mock).
			SetPattern("log_data/*/*/*.json").
			Build()
		Expect(err).ToNot(HaveOccurred())
		stream, err := reader.Read(ctx)
		Expect(err).ToNot(HaveOccurred())
		_, err = data.Collect(ctx, stream)
		var storageErr *storage.Error
		Expect(errors.As(err, &storageErr)).To(BeTrue())
		Expect(storageErr.Key).To(Equal("log_data/a/b/c.json"))
	})
})
