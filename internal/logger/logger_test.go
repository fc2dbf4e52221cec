// Copyright 2026 Katharos Technology. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katharostech/polyfs/cfg"
)

const (
	textTraceString   = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=TRACE message=\"TestLogs: www.traceExample.com\""
	textDebugString   = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=DEBUG message=\"TestLogs: www.debugExample.com\""
	textInfoString    = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=INFO message=\"TestLogs: www.infoExample.com\""
	textWarningString = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=WARNING message=\"TestLogs: www.warningExample.com\""
	textErrorString   = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=ERROR message=\"TestLogs: www.errorExample.com\""

	jsonTraceString   = "^{\"timestamp\":{\"seconds\":\\d+,\"nanos\":\\d+},\"severity\":\"TRACE\",\"message\":\"TestLogs: www.traceExample.com\"}"
	jsonDebugString   = "^{\"timestamp\":{\"seconds\":\\d+,\"nanos\":\\d+},\"severity\":\"DEBUG\",\"message\":\"TestLogs: www.debugExample.com\"}"
	jsonInfoString    = "^{\"timestamp\":{\"seconds\":\\d+,\"nanos\":\\d+},\"severity\":\"INFO\",\"message\":\"TestLogs: www.infoExample.com\"}"
	jsonWarningString = "^{\"timestamp\":{\"seconds\":\\d+,\"nanos\":\\d+},\"severity\":\"WARNING\",\"message\":\"TestLogs: www.warningExample.com\"}"
	jsonErrorString   = "^{\"timestamp\":{\"seconds\":\\d+,\"nanos\":\\d+},\"severity\":\"ERROR\",\"message\":\"TestLogs: www.errorExample.com\"}"
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func redirectLogsToGivenBuffer(buf *bytes.Buffer, format string, level string) {
	var programLevel = new(slog.LevelVar)
	defaultLoggerFactory.format = format
	defaultLogger = slog.New(
		defaultLoggerFactory.createJsonOrTextHandler(buf, programLevel, "TestLogs: "),
	)
	setLoggingLevel(level, programLevel)
}

func fetchLogOutputForSpecifiedSeverityLevel(format, level string) []string {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, format, level)

	var output []string
	for _, f := range []func(){
		func() { Tracef("www.traceExample.com") },
		func() { Debugf("www.debugExample.com") },
		func() { Infof("www.infoExample.com") },
		func() { Warnf("www.warningExample.com") },
		func() { Errorf("www.errorExample.com") },
	} {
		f()
		output = append(output, buf.String())
		buf.Reset()
	}
	return output
}

func validateOutput(t *testing.T, expected, output []string) {
	for i := range output {
		if expected[i] == "" {
			assert.Equal(t, expected[i], output[i])
			continue
		}
		assert.Regexp(t, regexp.MustCompile(expected[i]), output[i])
	}
}

func (s *LoggerTest) TestTextFormat_LogLevelOFF() {
	validateOutput(s.T(), []string{"", "", "", "", ""}, fetchLogOutputForSpecifiedSeverityLevel("text", string(cfg.OffLogSeverity)))
}

func (s *LoggerTest) TestTextFormat_LogLevelERROR() {
	expected := []string{"", "", "", "", textErrorString}
	validateOutput(s.T(), expected, fetchLogOutputForSpecifiedSeverityLevel("text", string(cfg.ErrorLogSeverity)))
}

func (s *LoggerTest) TestTextFormat_LogLevelWARNING() {
	expected := []string{"", "", "", textWarningString, textErrorString}
	validateOutput(s.T(), expected, fetchLogOutputForSpecifiedSeverityLevel("text", string(cfg.WarningLogSeverity)))
}

func (s *LoggerTest) TestTextFormat_LogLevelINFO() {
	expected := []string{"", "", textInfoString, textWarningString, textErrorString}
	validateOutput(s.T(), expected, fetchLogOutputForSpecifiedSeverityLevel("text", string(cfg.InfoLogSeverity)))
}

func (s *LoggerTest) TestTextFormat_LogLevelDEBUG() {
	expected := []string{"", textDebugString, textInfoString, textWarningString, textErrorString}
	validateOutput(s.T(), expected, fetchLogOutputForSpecifiedSeverityLevel("text", string(cfg.DebugLogSeverity)))
}

func (s *LoggerTest) TestTextFormat_LogLevelTRACE() {
	expected := []string{textTraceString, textDebugString, textInfoString, textWarningString, textErrorString}
	validateOutput(s.T(), expected, fetchLogOutputForSpecifiedSeverityLevel("text", string(cfg.TraceLogSeverity)))
}

func (s *LoggerTest) TestJSONFormat_LogLevelTRACE() {
	expected := []string{jsonTraceString, jsonDebugString, jsonInfoString, jsonWarningString, jsonErrorString}
	validateOutput(s.T(), expected, fetchLogOutputForSpecifiedSeverityLevel("json", string(cfg.TraceLogSeverity)))
}

func (s *LoggerTest) TestJSONFormat_LogLevelINFO() {
	expected := []string{"", "", jsonInfoString, jsonWarningString, jsonErrorString}
	validateOutput(s.T(), expected, fetchLogOutputForSpecifiedSeverityLevel("json", string(cfg.InfoLogSeverity)))
}

func (s *LoggerTest) TestSetLoggingLevel() {
	testData := []struct {
		inputLevel    string
		expectedLevel slog.Level
	}{
		{string(cfg.TraceLogSeverity), LevelTrace},
		{string(cfg.DebugLogSeverity), LevelDebug},
		{string(cfg.WarningLogSeverity), LevelWarn},
		{string(cfg.ErrorLogSeverity), LevelError},
		{string(cfg.OffLogSeverity), LevelOff},
	}
	for _, test := range testData {
		programLevel := new(slog.LevelVar)
		setLoggingLevel(test.inputLevel, programLevel)
		assert.Equal(s.T(), test.expectedLevel, programLevel.Level())
	}
}

func (s *LoggerTest) TestInitLogFile() {
	path := filepath.Join(s.T().TempDir(), "polyfs.log")
	err := InitLogFile(cfg.LoggingConfig{
		FilePath:        cfg.ResolvedPath(path),
		Severity:        cfg.DebugLogSeverity,
		Format:          "text",
		MaxFileSizeMB:   100,
		BackupFileCount: 2,
		Compress:        true,
	})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), path, defaultLoggerFactory.file.Name())
	assert.Nil(s.T(), defaultLoggerFactory.sysWriter)
	assert.Equal(s.T(), "text", defaultLoggerFactory.format)
	assert.Equal(s.T(), cfg.DebugLogSeverity, defaultLoggerFactory.level)
	assert.Equal(s.T(), 100, defaultLoggerFactory.logRotateConfig.MaxFileSizeMB)
	assert.Equal(s.T(), 2, defaultLoggerFactory.logRotateConfig.BackupFileCount)
	assert.True(s.T(), defaultLoggerFactory.logRotateConfig.Compress)
}

func (s *LoggerTest) TestInitLogFileRejectsEmptyPath() {
	assert.Error(s.T(), InitLogFile(cfg.LoggingConfig{Severity: cfg.InfoLogSeverity}))
}

func (s *LoggerTest) TestSetLogFormatToText() {
	defaultLoggerFactory = &loggerFactory{sysWriter: nil, level: cfg.InfoLogSeverity}

	for _, test := range []struct {
		format   string
		expected string
	}{
		{"text", textInfoString},
		{"json", jsonInfoString},
	} {
		SetLogFormat(test.format)
		assert.Equal(s.T(), test.format, defaultLoggerFactory.format)

		var buf bytes.Buffer
		redirectLogsToGivenBuffer(&buf, defaultLoggerFactory.format, string(defaultLoggerFactory.level))
		Infof("www.infoExample.com")
		assert.Regexp(s.T(), regexp.MustCompile(test.expected), buf.String())
	}
}
