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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/vexec/pkg/aggr"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/data"
	"github.com/daviszhen/vexec/pkg/exec"
	"github.com/daviszhen/vexec/pkg/util"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initRunCmd()
	initDemoCmd()
}

var vexecCfg = &util.Config{}

///root cmd

var info = "vexec"
var RootCmd = &cobra.Command{
	Use:          "vexec",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use vexec --help or -h")
	},
}

func initDebugOptions() {
	vexecCfg.Debug.PrintResult = viper.GetBool("debug.printResult")
	vexecCfg.Debug.PrintPlan = viper.GetBool("debug.printPlan")
	vexecCfg.Debug.ShowRaw = viper.GetBool("debug.showRaw")
	vexecCfg.Debug.MaxOutputCnt = viper.GetInt("debug.maxOutputRowCount")
	vexecCfg.Log.Level = viper.GetString("log.level")
}

//run cmd

var aggName string

var runInfo = "run a grouping aggregation over a parquet file"
var runCmd = &cobra.Command{
	Use:   "run",
	Short: runInfo,
	Long:  runInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initRunCfg()
		return runAggregation(vexecCfg, aggName)
	},
}

func initRunCfg() {
	initDebugOptions()
	vexecCfg.Source.Path = viper.GetString("source.path")
	vexecCfg.Source.Format = viper.GetString("source.format")
	vexecCfg.Source.GroupColumn = viper.GetInt("source.groupColumn")
	vexecCfg.Source.ValueColumn = viper.GetInt("source.valueColumn")
	vexecCfg.Source.ValueType = viper.GetString("source.valueType")
	vexecCfg.Source.BatchSize = viper.GetInt("source.batchSize")
}

func initRunCmd() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&aggName, "agg", "sum", "aggregate function. sum, min, max, count")
	runCmd.Flags().StringVar(&vexecCfg.Source.Path, "data_path", "", "parquet file path")
	runCmd.Flags().IntVar(&vexecCfg.Source.GroupColumn, "group_column", 0, "group ordinal column index")
	runCmd.Flags().IntVar(&vexecCfg.Source.ValueColumn, "value_column", 1, "value column index")
	runCmd.Flags().StringVar(&vexecCfg.Source.ValueType, "value_type", "int64", "value column type. int32, int64, float64")

	viper.BindPFlag("source.path", runCmd.Flags().Lookup("data_path"))
	viper.BindPFlag("source.groupColumn", runCmd.Flags().Lookup("group_column"))
	viper.BindPFlag("source.valueColumn", runCmd.Flags().Lookup("value_column"))
	viper.BindPFlag("source.valueType", runCmd.Flags().Lookup("value_type"))
}

//demo cmd

var demoRows int

var demoInfo = "run a grouping aggregation over generated data"
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: demoInfo,
	Long:  demoInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initDemoCfg()
		return runDemo(vexecCfg, aggName, demoRows)
	},
}

func initDemoCfg() {
	initDebugOptions()
	vexecCfg.Source.MaxScanRows = viper.GetInt("source.maxScanRows")
	vexecCfg.Source.PartitionCnt = viper.GetInt("source.partitionCount")
}

func initDemoCmd() {
	RootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&aggName, "agg", "sum", "aggregate function. sum, min, max, count")
	demoCmd.Flags().IntVar(&demoRows, "rows", 1000, "generated row count")
	demoCmd.Flags().IntVar(&vexecCfg.Source.PartitionCnt, "partitions", 1, "parallel partition count")

	viper.BindPFlag("source.partitionCount", demoCmd.Flags().Lookup("partitions"))
}

func valueType(name string) (common.DataType, error) {
	switch name {
	case "int32":
		return common.INT32, nil
	case "int64", "":
		return common.INT64, nil
	case "float64":
		return common.FLOAT64, nil
	default:
		return common.INVALID, fmt.Errorf("unknown value type %s", name)
	}
}

func runAggregation(cfg *util.Config, agg string) error {
	if err := util.SetupLogger(cfg.Log.Level); err != nil {
		return err
	}
	if cfg.Source.Format != "" && cfg.Source.Format != "parquet" {
		return fmt.Errorf("unsupported source format %s", cfg.Source.Format)
	}
	typ, err := valueType(cfg.Source.ValueType)
	if err != nil {
		return err
	}
	factory, err := aggr.Lookup(agg, typ)
	if err != nil {
		return err
	}
	source, err := exec.NewParquetSource(
		cfg.Source.Path,
		cfg.Source.BatchSize,
		exec.ParquetColumn{Index: int64(cfg.Source.GroupColumn), Type: common.INT64},
		exec.ParquetColumn{Index: int64(cfg.Source.ValueColumn), Type: typ})
	if err != nil {
		return err
	}
	sink := exec.NewOrderedSink(0)
	driver := exec.NewDriver(source,
		exec.NewGroupingAggregation(exec.SingleMode, factory(), 0, 1),
		sink)
	return runDriver(cfg, driver, sink)
}

func runDemo(cfg *util.Config, agg string, rows int) error {
	if err := util.SetupLogger(cfg.Log.Level); err != nil {
		return err
	}
	factory, err := aggr.Lookup(agg, common.INT64)
	if err != nil {
		return err
	}
	if cfg.Source.MaxScanRows > 0 && rows > cfg.Source.MaxScanRows {
		rows = cfg.Source.MaxScanRows
	}
	values := exec.Ramp[int64](rows, 1, 1)
	groups := make([]int64, rows)
	for i := range groups {
		groups[i] = int64(i % 10)
	}
	if cfg.Source.PartitionCnt > 1 {
		return runDemoPartitioned(cfg, factory, groups, values)
	}
	source, err := exec.NewGroupValueSource("demo", util.DefaultVectorSize, groups, values)
	if err != nil {
		return err
	}
	sink := exec.NewOrderedSink(0)
	driver := exec.NewDriver(source,
		exec.NewGroupingAggregation(exec.SingleMode, factory(), 0, 1),
		sink)
	return runDriver(cfg, driver, sink)
}

// runDemoPartitioned splits the rows across partitions, aggregates them
// in parallel and combines the partial states.
func runDemoPartitioned(cfg *util.Config, factory aggr.Factory, groups, values []int64) error {
	cnt := cfg.Source.PartitionCnt
	size := (len(groups) + cnt - 1) / cnt
	var partitions [][]*data.Page
	for start := 0; start < len(groups); start += size {
		end := min(start+size, len(groups))
		page, err := data.NewPage(
			data.NewBlock(groups[start:end]...),
			data.NewBlock(values[start:end]...))
		if err != nil {
			return err
		}
		partitions = append(partitions, []*data.Page{page})
	}
	result, err := exec.AggregatePartitions(context.Background(),
		factory, 0, 1, partitions, cnt)
	if err != nil {
		return err
	}
	sink := exec.NewOrderedSink(0)
	if result != nil {
		if err := sink.Absorb(result); err != nil {
			return err
		}
	}
	if cfg.Debug.PrintResult {
		printRows(cfg, sink.Rows())
	}
	util.Info("partitioned demo finished",
		zap.Int("partitions", len(partitions)),
		zap.Int("groups", sink.Len()))
	return nil
}

func runDriver(cfg *util.Config, driver *exec.Driver, sink *exec.OrderedSink) error {
	if cfg.Debug.PrintPlan {
		fmt.Print(driver.Explain())
	}
	if err := exec.RunPipelines(context.Background(), driver); err != nil {
		return err
	}
	if cfg.Debug.PrintResult {
		printRows(cfg, sink.Rows())
	}
	util.Info("pipeline finished", zap.Int("groups", sink.Len()))
	return nil
}

func printRows(cfg *util.Config, rows []exec.GroupRow) {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("group\tvalue")
	for i, row := range rows {
		if cfg.Debug.MaxOutputCnt > 0 && i >= cfg.Debug.MaxOutputCnt {
			fmt.Printf("... %d more rows\n", len(rows)-i)
			break
		}
		fmt.Printf("%d\t%v\n", row.Group, row.Values)
	}
}

var defCfgFilePaths = []string{".", "etc"}
var cfgFileName = "vexec.toml"

func loadConfig() {
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if util.FileIsValid(fpath) {
			viper.SetConfigFile(fpath)
			err := viper.ReadInConfig()
			if err != nil {
				util.Error("viper load config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
				continue
			}
			break
		}
	}
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
