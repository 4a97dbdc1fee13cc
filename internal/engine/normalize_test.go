// Copyright © 2016 Abcum Ltd
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

package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeSymbolMapping(t *testing.T) {

	Convey("Normalizing a name with symbol substitutions", t, func() {
		nr := Normalize(Record{AccountName: "Smith & Jones / Co"})
		Convey("Should expand '&' to 'and' and '/' to a space", func() {
			So(nr.NameBase, ShouldEqual, "smith and jones co")
		})
	})

	Convey("Normalizing a name with a legal suffix", t, func() {
		nr := Normalize(Record{AccountName: "Acme Corp"})
		Convey("Should extract the suffix class", func() {
			So(nr.SuffixClass, ShouldEqual, SuffixCORP)
		})
		Convey("Should remove the suffix from name_core", func() {
			So(nr.NameCore, ShouldEqual, "acme")
		})
	})

	Convey("Normalizing a name with no recognizable suffix", t, func() {
		nr := Normalize(Record{AccountName: "Acme Retail"})
		Convey("Should classify suffix as NONE", func() {
			So(nr.SuffixClass, ShouldEqual, SuffixNONE)
		})
		Convey("Should leave name_core equal to name_base", func() {
			So(nr.NameCore, ShouldEqual, nr.NameBase)
		})
	})

	Convey("Normalizing an already-normalized name", t, func() {
		Convey("Should be a fixed point", func() {
			first := Normalize(Record{AccountName: "acme"})
			second := Normalize(Record{AccountName: first.NameCore})
			So(second.NameCore, ShouldEqual, first.NameCore)
		})
	})
}

func TestNormalizeNumericStyle(t *testing.T) {

	Convey("Normalizing names with varying numeric separators", t, func() {
		dash := Normalize(Record{AccountName: "Store 123-456"})
		slash := Normalize(Record{AccountName: "Store 123/456"})
		Convey("Should detect the raw digit-run separator style", func() {
			So(dash.RawNumericStyle, ShouldEqual, "-")
			So(slash.RawNumericStyle, ShouldEqual, "/")
		})
		Convey("Should unify both into the same N N form for matching", func() {
			So(dash.NameCore, ShouldEqual, slash.NameCore)
		})
	})

	Convey("Normalizing a name with no digit run", t, func() {
		nr := Normalize(Record{AccountName: "Acme Corp"})
		Convey("Should report an empty raw numeric style", func() {
			So(nr.RawNumericStyle, ShouldEqual, "")
		})
	})
}

func TestEnhancedTokens(t *testing.T) {

	Convey("Deriving enhanced tokens from a name_core", t, func() {
		nr := Normalize(Record{AccountName: "The Acme Stores of Texas"})
		Convey("Should drop weak tokens", func() {
			_, hasThe := nr.EnhancedTokens["the"]
			_, hasOf := nr.EnhancedTokens["of"]
			So(hasThe, ShouldBeFalse)
			So(hasOf, ShouldBeFalse)
		})
		Convey("Should singularize plural tokens", func() {
			_, hasStore := nr.EnhancedTokens["store"]
			_, hasStores := nr.EnhancedTokens["stores"]
			So(hasStore, ShouldBeTrue)
			So(hasStores, ShouldBeFalse)
		})
	})
}

func TestAliasExtraction(t *testing.T) {

	Convey("A name containing a semicolon", t, func() {
		nr := Normalize(Record{AccountName: "Foo Corp; Bar Corp"})
		Convey("Should extract one alias per segment, tagged semicolon", func() {
			So(nr.AliasCandidates, ShouldHaveLength, 2)
			So(nr.AliasCandidates[0].Source, ShouldEqual, AliasSemicolon)
			So(nr.AliasCandidates[0].Text, ShouldEqual, "Foo Corp")
			So(nr.AliasCandidates[1].Text, ShouldEqual, "Bar Corp")
		})
		Convey("Should set has_multiple_names", func() {
			So(nr.HasMultipleNames, ShouldBeTrue)
		})
	})

	Convey("A name with numbered markers", t, func() {
		nr := Normalize(Record{AccountName: "Acme (1) Acme (2)"})
		Convey("Should extract aliases tagged numbered", func() {
			So(len(nr.AliasCandidates), ShouldBeGreaterThan, 0)
			So(nr.AliasCandidates[0].Source, ShouldEqual, AliasNumbered)
		})
	})

	Convey("A name with a repeated 'and' separator", t, func() {
		nr := Normalize(Record{AccountName: "Acme Stores and Beta Stores and Gamma Stores"})
		Convey("Should extract aliases tagged numbered", func() {
			So(len(nr.AliasCandidates), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Parenthetical content satisfying the parenthesis gate", t, func() {
		Convey("A legal-suffix token inside parens qualifies", func() {
			nr := Normalize(Record{AccountName: "Acme Retail (Former Co)"})
			So(nr.AliasCandidates, ShouldHaveLength, 1)
			So(nr.AliasCandidates[0].Source, ShouldEqual, AliasParenthesis)
			So(nr.AliasCandidates[0].Text, ShouldEqual, "Former Co")
		})
		Convey("Two capitalized words inside parens qualify", func() {
			nr := Normalize(Record{AccountName: "Acme (Texas Holdings)"})
			So(nr.AliasCandidates, ShouldHaveLength, 1)
		})
	})

	Convey("Parenthetical content on the blacklist", t, func() {
		Convey("Should not qualify as an alias", func() {
			nr := Normalize(Record{AccountName: "Acme Corp (not sure)"})
			So(nr.AliasCandidates, ShouldBeEmpty)
		})
	})

	Convey("Digit-only parenthetical content", t, func() {
		Convey("Should not qualify as an alias", func() {
			nr := Normalize(Record{AccountName: "Acme Corp (12345)"})
			So(nr.AliasCandidates, ShouldBeEmpty)
		})
	})

	Convey("A single lowercase word in parens with no suffix", t, func() {
		Convey("Should not qualify as an alias", func() {
			nr := Normalize(Record{AccountName: "Acme Corp (branch)"})
			So(nr.AliasCandidates, ShouldBeEmpty)
		})
	})

	Convey("A plain name with no semicolon, numbering or parens", t, func() {
		nr := Normalize(Record{AccountName: "Acme Corp"})
		Convey("Should produce no alias candidates", func() {
			So(nr.AliasCandidates, ShouldBeEmpty)
		})
		Convey("Should leave has_multiple_names false", func() {
			So(nr.HasMultipleNames, ShouldBeFalse)
		})
	})
}

func TestNormalizeTransliteration(t *testing.T) {

	Convey("A name containing diacritics", t, func() {
		nr := Normalize(Record{AccountName: "Café Société"})
		Convey("Should transliterate to plain ASCII", func() {
			So(nr.NameBase, ShouldEqual, "cafe societe")
		})
	})
}
