// Package headermap maps ambiguous, multilingual table headers to the
// canonical line-item fields. Matching is layered: literal regex tables first,
// then keyword fuzzy fallback, then positional inference for headerless tables.
package headermap

import (
	"regexp"

	"github.com/docufield/invoice-extract/constants"
)

// fieldPatterns holds one ordered alternation per canonical field. Kept as
// literal data rather than code branches so the language lists stay easy to
// extend and test in isolation. Matched case-insensitively against the trimmed
// header cell.
var fieldPatterns = map[string]*regexp.Regexp{
	constants.FieldSeq:       regexp.MustCompile(`(?i)^(序号|序號|项次|項次|no\.?|s/n|seq(uence)?|#)$`),
	constants.FieldCode:      regexp.MustCompile(`(?i)款号|款號|货号|貨號|型号|型號|编号|編號|代码|代碼|品号|品號|条码|條碼|item\s*(no|code|#)|product\s*code|art\.?\s*no|\bsku\b|\bcode\b`),
	constants.FieldName:      regexp.MustCompile(`(?i)品名|名称|名稱|商品|货品|貨品|description|\bitem\b|product|\bname\b|goods`),
	constants.FieldColor:     regexp.MustCompile(`(?i)颜色|顏色|色号|色號|colou?r`),
	constants.FieldSize:      regexp.MustCompile(`(?i)尺码|尺碼|尺寸|规格|規格|\bsize\b|\bspec\b`),
	constants.FieldUnit:      regexp.MustCompile(`(?i)单位|單位|^unit$|\buom\b`),
	constants.FieldQty:       regexp.MustCompile(`(?i)数量|數量|件数|件數|\bqty\b|quantity|\bpcs\b`),
	constants.FieldUnitPrice: regexp.MustCompile(`(?i)单价|單價|unit\s*price|\bprice\b|单价\s*[(（]元[)）]`),
	constants.FieldTotal:     regexp.MustCompile(`(?i)金额|金額|总价|總價|小计|小計|合计|合計|amount|\btotal\b|\bsum\b`),
	constants.FieldRemark:    regexp.MustCompile(`(?i)备注|備註|remark|\bnote\b|\bmemo\b|comment`),
	constants.FieldDiscount:  regexp.MustCompile(`(?i)折扣|折让|折讓|discount`),
}

// fieldKeywords is the loose substring fallback, scanned when no pattern hit.
var fieldKeywords = map[string][]string{
	constants.FieldSeq:       {"序", "s/n"},
	constants.FieldCode:      {"code", "sku", "款", "货号", "貨號", "编号"},
	constants.FieldName:      {"name", "desc", "item", "品名", "名称", "名稱", "商品"},
	constants.FieldColor:     {"color", "colour", "颜色", "顏色"},
	constants.FieldSize:      {"size", "尺", "规格", "規格"},
	constants.FieldUnit:      {"单位", "單位", "uom"},
	constants.FieldQty:       {"qty", "quant", "数量", "數量", "件"},
	constants.FieldUnitPrice: {"price", "单价", "單價"},
	constants.FieldTotal:     {"total", "amount", "金额", "金額", "合计", "合計"},
	constants.FieldRemark:    {"remark", "note", "备注", "備註"},
	constants.FieldDiscount:  {"discount", "折"},
}

var reNumericHeader = regexp.MustCompile(`^[\d\s.,%¥$€-]*$`)
