// Copyright 2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

type DataSource struct {
	Path         string `toml:"path"`
	Format       string `toml:"format"`
	GroupColumn  int    `toml:"groupColumn"`
	ValueColumn  int    `toml:"valueColumn"`
	ValueType    string `toml:"valueType"`
	MaxScanRows  int    `toml:"maxScanRows"`
	BatchSize    int    `toml:"batchSize"`
	PartitionCnt int    `toml:"partitionCount"`
}

type DebugOptions struct {
	PrintResult  bool `toml:"printResult"`
	PrintPlan    bool `toml:"printPlan"`
	ShowRaw      bool `toml:"showRaw"`
	MaxOutputCnt int  `toml:"maxOutputRowCount"`
}

type LogOptions struct {
	Level string `toml:"level"`
}

type Config struct {
	Source DataSource   `toml:"source"`
	Debug  DebugOptions `toml:"debug"`
	Log    LogOptions   `toml:"log"`
}
