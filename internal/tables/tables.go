/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

// Package tables contains the definitions of the output tables: their names, columns, partition
// columns and the types of the rows stored in the Parquet files.
package tables

import (
	"github.com/openshift-kni/songplays-etl/internal/data"
)

// Definition describes an output table.
type Definition struct {
	// Name is the name of the directory of the table, for example 'song_table'.
	Name string

	// Columns are the names of all the columns of the table, including the partition columns,
	// in the order used by the projection that produces the rows.
	Columns []string

	// PartitionBy are the columns used to partition the table, in the order of the directory
	// levels. The values of these columns are stored in the directory names, not in the files.
	PartitionBy []string

	// Prototype is a pointer to a value of the type of the rows of the Parquet files. The
	// writer uses it to calculate the schema of the files.
	Prototype any

	// Convert converts a row of the table into the value written to the Parquet file.
	Convert func(row data.Row) any
}

// Partitioned checks if the table is partitioned.
func (d *Definition) Partitioned() bool {
	return len(d.PartitionBy) > 0
}

// All returns the definitions of all the tables in the order they are written.
func All() []*Definition {
	return []*Definition{
		Songs,
		Artists,
		Users,
		Time,
		Songplays,
	}
}
