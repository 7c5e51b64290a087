// Package ooxml reads Open Packaging Convention containers: the zip archive,
// its content type table and the relationship parts that tie the XML parts to
// embedded binary assets.
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Common OOXML namespaces.
const (
	NSRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"

	NSWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSDrawingML        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSRelDoc           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSVML              = "urn:schemas-microsoft-com:vml"
	NSOffice           = "urn:schemas-microsoft-com:office:office"
	NSMarkupCompat     = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// RelTypeOfficeDocument is the package relationship pointing at the main part.
const RelTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"

// DefaultMainPart is used when the package relationships do not name one.
const DefaultMainPart = "word/document.xml"

// Relationship represents an OOXML relationship.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the relationship points outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// Relationships is the root element for .rels files.
type Relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

type contentTypesXML struct {
	XMLName   xml.Name          `xml:"Types"`
	Defaults  []defaultTypeXML  `xml:"Default"`
	Overrides []overrideTypeXML `xml:"Override"`
}

type defaultTypeXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideTypeXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Part is a binary part reached through a relationship.
type Part struct {
	Name        string
	Blob        []byte
	ContentType string
}

// Package is an opened OPC container.
type Package struct {
	zr        *zip.Reader
	files     map[string]*zip.File
	defaults  map[string]string
	overrides map[string]string
	mainPart  string
}

// Open reads the zip directory, the content type table and locates the main
// document part. Missing required parts are reported as errors.
func Open(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	p := &Package{
		zr:        zr,
		files:     make(map[string]*zip.File, len(zr.File)),
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
	}
	for _, f := range zr.File {
		p.files[f.Name] = f
	}

	if err := p.parseContentTypes(); err != nil {
		return nil, err
	}

	p.mainPart = DefaultMainPart
	rels, err := p.Relationships("")
	if err != nil {
		return nil, err
	}
	for _, rel := range rels {
		if rel.Type == RelTypeOfficeDocument && !rel.External() {
			p.mainPart = ResolveTarget("", rel.Target)
			break
		}
	}
	if _, ok := p.files[p.mainPart]; !ok {
		return nil, fmt.Errorf("missing required part: %s", p.mainPart)
	}

	return p, nil
}

// MainPart returns the name of the main document part.
func (p *Package) MainPart() string {
	return p.mainPart
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// ReadPart returns the raw bytes of a part.
func (p *Package) ReadPart(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("part %q not found in package", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ContentType returns the declared content type of a part. Overrides win
// over extension defaults.
func (p *Package) ContentType(name string) string {
	if ct, ok := p.overrides["/"+strings.TrimPrefix(name, "/")]; ok {
		return ct
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	return p.defaults[ext]
}

// Relationships parses the .rels part belonging to the given part. An empty
// name selects the package relationships. A missing .rels part yields an
// empty map.
func (p *Package) Relationships(part string) (map[string]Relationship, error) {
	relsPath := "_rels/.rels"
	if part != "" {
		relsPath = RelsPathFor(part)
	}
	f, ok := p.files[relsPath]
	if !ok {
		return make(map[string]Relationship), nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return decodeRels(rc)
}

// Parts resolves every internal relationship of a part to its target bytes
// and content type. Relationships whose target is absent from the archive
// are left out.
func (p *Package) Parts(part string) (map[string]Part, error) {
	rels, err := p.Relationships(part)
	if err != nil {
		return nil, fmt.Errorf("parse relationships of %s: %w", part, err)
	}
	parts := make(map[string]Part, len(rels))
	for id, rel := range rels {
		if rel.External() {
			continue
		}
		name := ResolveTarget(part, rel.Target)
		if !p.Has(name) {
			continue
		}
		blob, err := p.ReadPart(name)
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", name, err)
		}
		parts[id] = Part{
			Name:        name,
			Blob:        blob,
			ContentType: p.ContentType(name),
		}
	}
	return parts, nil
}

func (p *Package) parseContentTypes() error {
	f, ok := p.files["[Content_Types].xml"]
	if !ok {
		return fmt.Errorf("missing required part: [Content_Types].xml")
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	var types contentTypesXML
	if err := xml.NewDecoder(rc).Decode(&types); err != nil {
		return fmt.Errorf("decode content types: %w", err)
	}
	for _, d := range types.Defaults {
		p.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range types.Overrides {
		p.overrides["/"+strings.TrimPrefix(o.PartName, "/")] = o.ContentType
	}
	return nil
}

func decodeRels(r io.Reader) (map[string]Relationship, error) {
	var rels Relationships
	if err := xml.NewDecoder(r).Decode(&rels); err != nil {
		return nil, fmt.Errorf("decode relationships: %w", err)
	}
	result := make(map[string]Relationship, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		result[rel.ID] = rel
	}
	return result, nil
}

// RelsPathFor returns the .rels path for a given file in the ZIP.
func RelsPathFor(filePath string) string {
	dir := path.Dir(filePath)
	base := path.Base(filePath)
	if dir == "." {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

// ResolveTarget resolves a relationship target against the part that owns
// the relationship. Absolute targets are taken from the package root.
func ResolveTarget(basePath, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	dir := path.Dir(basePath)
	if basePath == "" {
		dir = "."
	}
	return strings.TrimPrefix(path.Join(dir, target), "/")
}
