package syntax

// Node kinds produced by the Rust grammar that the engine inspects.
const (
	KindSourceFile      = "source_file"
	KindModItem         = "mod_item"
	KindFunctionItem    = "function_item"
	KindFunctionSig     = "function_signature_item"
	KindStructItem      = "struct_item"
	KindEnumItem        = "enum_item"
	KindUnionItem       = "union_item"
	KindTraitItem       = "trait_item"
	KindTypeItem        = "type_item"
	KindConstItem       = "const_item"
	KindStaticItem      = "static_item"
	KindImplItem        = "impl_item"
	KindMacroDefinition = "macro_definition"
	KindAttributeItem   = "attribute_item"
	KindDeclarationList = "declaration_list"
	KindTypeParameters  = "type_parameters"
	KindIdentifier      = "identifier"
	KindTypeIdentifier  = "type_identifier"
	KindLifetime        = "lifetime"
	KindLineComment     = "line_comment"
	KindBlockComment    = "block_comment"
	KindError           = "ERROR"

	KindComma     = ","
	KindSemicolon = ";"
)

// Field names recorded on converted nodes.
const (
	FieldName           = "name"
	FieldBody           = "body"
	FieldType           = "type"
	FieldTrait          = "trait"
	FieldTypeParameters = "type_parameters"
	FieldLeft           = "left"
)

var recordedFields = []string{FieldName, FieldBody, FieldType, FieldTrait, FieldTypeParameters, FieldLeft}

// IsTrivia reports whether kind is a comment.
func IsTrivia(kind string) bool {
	return kind == KindLineComment || kind == KindBlockComment
}

// IsNominalDef reports whether kind declares a struct, enum, or union.
func IsNominalDef(kind string) bool {
	return kind == KindStructItem || kind == KindEnumItem || kind == KindUnionItem
}
