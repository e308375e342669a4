/*
Copyright 2024 Red Hat Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in
compliance with the License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is
distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing permissions and limitations under the
License.
*/

// This file contains the names of the labels included in metrics.

package metrics

// Names of the labels added to metrics:
const (
	datasetLabelName = "dataset"
	stageLabelName   = "stage"
	tableLabelName   = "table"
)

// Label added to metrics that refer to an input dataset, like 'song_data' or 'log_data':
var datasetLabelNames = []string{
	datasetLabelName,
}

// Label added to metrics that refer to an output table, like 'song_table':
var tableLabelNames = []string{
	tableLabelName,
}

// Label added to metrics that refer to a stage of the pipeline:
var stageLabelNames = []string{
	stageLabelName,
}
