// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package report serializes a disk.PartitionList snapshot to XML, for
// bundling into installer logs alongside whatever edits were applied.
package report

import (
	"encoding/xml"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"time"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/sysinfo"
)

const XmlOutputVersion = "1.0"

var DefaultMetadata = Metadata{
	Xmlns:    "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML",
	XmlnsXsi: "http://www.w3.org/2001/XMLSchema-instance",
	XmlnsDC:  "http://purl.org/dc/elements/1.1/",
	Type:     "Partition Layout Report",
}

// Header is the root element of a layout report document.
type Header struct {
	XMLName   xml.Name `xml:"partitionreport"`
	XmlOutput string   `xml:"xmloutputversion,attr,omitempty"`
	Metadata  Metadata `xml:"metadata"`
	Creator   Creator  `xml:"creator"`
}

// Metadata carries the document's namespace declarations.
type Metadata struct {
	Xmlns    string `xml:"xmlns,attr"`
	XmlnsXsi string `xml:"xmlns:xsi,attr"`
	XmlnsDC  string `xml:"xmlns:dc,attr"`
	Type     string `xml:"dc:type"`
}

// Creator describes the software and environment that produced the report.
type Creator struct {
	Package              string  `xml:"package"`
	Version              string  `xml:"version"`
	ExecutionEnvironment ExecEnv `xml:"execution_environment"`
}

// ExecEnv mirrors the teacher's forensic-report execution environment
// block: host OS, architecture, user, and start time.
type ExecEnv struct {
	OS      string `xml:"os_sysname"`
	Release string `xml:"os_release"`
	Version string `xml:"os_version"`
	Host    string `xml:"host"`
	Arch    string `xml:"arch"`
	UID     int    `xml:"uid"`
	Start   string `xml:"start_time"`
}

// DiskObject is one scanned disk and its region list.
type DiskObject struct {
	XMLName     xml.Name       `xml:"disk"`
	Number      int            `xml:"number,attr"`
	Style       string         `xml:"style,attr"`
	Signature   uint32         `xml:"signature,attr"`
	SuperFloppy bool           `xml:"super_floppy,attr"`
	Regions     []RegionObject `xml:"region"`
}

// RegionObject is one partitioned-or-free region on a disk.
type RegionObject struct {
	XMLName       xml.Name `xml:"region"`
	StartSector   uint64   `xml:"start_sector,attr"`
	SectorCount   uint64   `xml:"sector_count,attr"`
	Partitioned   bool     `xml:"partitioned,attr"`
	Logical       bool     `xml:"logical,attr"`
	PartitionType byte     `xml:"partition_type,attr,omitempty"`
	DriveLetter   string   `xml:"drive_letter,attr,omitempty"`
	Filesystem    string   `xml:"filesystem,attr,omitempty"`
}

// BuildDiskObject snapshots d's primary and logical region lists, in order,
// into a DiskObject.
func BuildDiskObject(d *disk.Disk) DiskObject {
	obj := DiskObject{
		Number:      d.Number,
		Style:       d.Style.String(),
		Signature:   d.Signature,
		SuperFloppy: d.SuperFloppy,
	}
	for _, r := range d.Primary {
		obj.Regions = append(obj.Regions, regionObject(r, false))
	}
	for _, r := range d.Logical {
		obj.Regions = append(obj.Regions, regionObject(r, true))
	}
	return obj
}

func regionObject(r *disk.Region, logical bool) RegionObject {
	ro := RegionObject{
		StartSector: r.StartSector,
		SectorCount: r.SectorCount,
		Partitioned: r.IsPartitioned,
		Logical:     logical,
	}
	if r.IsPartitioned {
		ro.PartitionType = byte(r.PartitionType)
		ro.Filesystem = r.Volume.Filesystem
		if r.Volume.DriveLetter != 0 {
			ro.DriveLetter = string(r.Volume.DriveLetter) + ":"
		}
	}
	return ro
}

// GetExecEnv gathers the host, architecture, user and start-time fields for
// the report's creator block.
func GetExecEnv() ExecEnv {
	sinfo, err := sysinfo.Stat()
	if err != nil {
		sinfo = &sysinfo.SysUnknown
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown_host"
	}

	uid := 0
	if currentUser, err := user.Current(); err == nil {
		if uidInt, err := strconv.Atoi(currentUser.Uid); err == nil {
			uid = uidInt
		}
	}

	return ExecEnv{
		OS:      sinfo.Name,
		Release: sinfo.Release,
		Version: sinfo.Version,
		Host:    host,
		Arch:    runtime.GOARCH,
		UID:     uid,
		Start:   time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}
}
