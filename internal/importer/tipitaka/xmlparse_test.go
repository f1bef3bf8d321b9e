package tipitaka

import "testing"

const mnSampleXML = `<?xml version="1.0"?>
<text>
<body>
<p rend="nikaya">Majjhimanikāyo</p>
<div id="mn1" type="book">
<head rend="book">Mūlapaṇṇāsapāḷi</head>
<div id="mn1_1" type="vagga">
<head rend="chapter">1. Mūlapariyāyavaggo</head>
<p rend="subhead">1. Mūlapariyāyasuttaṃ</p>
<p rend="bodytext" n="1"><hi rend="paranum">1</hi><hi rend="dot">.</hi> Evaṃ me sutaṃ</p>
</div>
</div>
</body>
</text>`

func TestParseXMLNikayaHeading(t *testing.T) {
	col, err := parseXML(`<text><body><p rend="nikaya">Majjhimanikāyo</p></body></text>`, false)
	if err != nil {
		t.Fatal(err)
	}
	if col.Nikaya != "Majjhimanikāyo" {
		t.Errorf("nikaya = %q", col.Nikaya)
	}
}

func TestParseXMLBookStructure(t *testing.T) {
	col, err := parseXML(mnSampleXML, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(col.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(col.Books))
	}
	if col.Books[0].ID != "mn1" || col.Books[0].Title != "Mūlapaṇṇāsapāḷi" {
		t.Errorf("book = %+v", col.Books[0])
	}
}

func TestParseXMLVaggaStructure(t *testing.T) {
	col, err := parseXML(mnSampleXML, false)
	if err != nil {
		t.Fatal(err)
	}
	vaggas := col.Books[0].Vaggas
	if len(vaggas) != 1 || vaggas[0].ID != "mn1_1" || vaggas[0].Title != "1. Mūlapariyāyavaggo" {
		t.Errorf("vaggas = %+v", vaggas)
	}
}

func TestParseXMLSuttaSubhead(t *testing.T) {
	col, err := parseXML(mnSampleXML, false)
	if err != nil {
		t.Fatal(err)
	}
	suttas := col.Books[0].Vaggas[0].Suttas
	if len(suttas) != 1 || suttas[0].Title != "1. Mūlapariyāyasuttaṃ" {
		t.Errorf("suttas = %+v", suttas)
	}
}

func TestParseXMLParagraphWithHi(t *testing.T) {
	col, err := parseXML(mnSampleXML, false)
	if err != nil {
		t.Fatal(err)
	}
	sutta := col.Books[0].Vaggas[0].Suttas[0]
	if len(sutta.Content) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(sutta.Content))
	}
	p := sutta.Content[0]
	if p.Rend != "bodytext" || !p.HasN || p.N != "1" {
		t.Errorf("paragraph = %+v", p)
	}
	if len(p.Content) < 3 {
		t.Errorf("expected at least 3 content nodes (paranum, dot, text), got %d: %+v", len(p.Content), p.Content)
	}
}

func TestParseXMLPageBreak(t *testing.T) {
	xml := `<text><body><p rend="nikaya">Majjhimanikāyo</p><div type="book" id="mn1">
<head rend="book">T</head><div type="vagga" id="mn1_1"><head rend="chapter">V</head>
<p rend="subhead">S</p><p rend="bodytext" n="1">before<pb ed="pts" n="5"/>after</p>
</div></div></body></text>`
	col, err := parseXML(xml, false)
	if err != nil {
		t.Fatal(err)
	}
	p := col.Books[0].Vaggas[0].Suttas[0].Content[0]
	var sawPB bool
	for _, n := range p.Content {
		if n.Kind == "pb" && n.Ed == "pts" && n.N == "5" {
			sawPB = true
		}
	}
	if !sawPB {
		t.Errorf("expected a pb content node, got %+v", p.Content)
	}
}

// dnSampleXML has no <p rend="subhead"> at all: Dīgha-nikāya files mark
// each sutta with <head rend="chapter"> instead.
const dnSampleXML = `<?xml version="1.0"?>
<text>
<body>
<p rend="nikaya">Dīghanikāyo</p>
<div id="dn1" type="book">
<head rend="book">Sīlakkhandhavaggapāḷi</head>
<div id="dn1_1" type="vagga">
<head rend="chapter">1. Brahmajālasuttaṃ</head>
<p rend="bodytext" n="1">Evaṃ me sutaṃ</p>
</div>
<div id="dn1_2" type="vagga">
<head rend="chapter">2. Sāmaññaphalasuttaṃ</head>
<p rend="bodytext" n="50">Evaṃ me sutaṃ pi</p>
</div>
</div>
</body>
</text>`

func TestParseXMLChapterHeadStartsSuttaForDigha(t *testing.T) {
	col, err := parseXML(dnSampleXML, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(col.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(col.Books))
	}
	var suttas []*parsedSutta
	for _, v := range col.Books[0].Vaggas {
		suttas = append(suttas, v.Suttas...)
	}
	if len(suttas) != 2 {
		t.Fatalf("expected 2 suttas from <head rend=\"chapter\">, got %d", len(suttas))
	}
	if suttas[0].Title != "1. Brahmajālasuttaṃ" || suttas[1].Title != "2. Sāmaññaphalasuttaṃ" {
		t.Errorf("sutta titles = %+v", suttas)
	}
	if len(suttas[0].Content) != 1 || suttas[0].Content[0].N != "1" {
		t.Errorf("first sutta content = %+v", suttas[0].Content)
	}
	if len(suttas[1].Content) != 1 || suttas[1].Content[0].N != "50" {
		t.Errorf("second sutta content = %+v", suttas[1].Content)
	}
}

// commentarySampleXML mirrors fragment_reconstructor.rs's
// test_roundtrip_commentary_style fixture: multiple <head rend="chapter">
// tags sit directly inside one <div type="book"> with no nested
// <div type="vagga">.
const commentarySampleXML = `<?xml version="1.0"?>
<text>
<body>
<p rend="nikaya">Dīghanikāyo (aṭṭhakathā)</p>
<div id="dn1a" type="book">
<head rend="book">Sumaṅgalavilāsinī</head>
<head rend="chapter">1. Brahmajālasuttavaṇṇanā</head>
<p rend="bodytext" n="1">Sīlakkhandhavagga aṭṭhakathā</p>
<head rend="chapter">2. Sāmaññaphalasuttavaṇṇanā</head>
<p rend="bodytext" n="50">Dutiya aṭṭhakathā</p>
</div>
</body>
</text>`

func TestParseXMLCommentaryStyleWithoutVaggaDiv(t *testing.T) {
	col, err := parseXML(commentarySampleXML, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(col.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(col.Books))
	}
	var suttas []*parsedSutta
	for _, v := range col.Books[0].Vaggas {
		suttas = append(suttas, v.Suttas...)
	}
	if len(suttas) != 2 {
		t.Fatalf("expected 2 suttas synthesized without a vagga div, got %d", len(suttas))
	}
	if suttas[0].Content[0].N != "1" || suttas[1].Content[0].N != "50" {
		t.Errorf("suttas = %+v", suttas)
	}
}
