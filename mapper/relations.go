package mapper

import (
	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/identity"
	"github.com/c360studio/artgraph/source"
	"github.com/c360studio/artgraph/thesaurus"
)

// roles maps the relations of a work to other works. The related work is
// referenced by identity only and may never be mapped itself.
func (p *pass) roles(workID string, relations []source.Relation) []*entity.Role {
	var out []*entity.Role
	for _, rel := range relations {
		var classification *entity.Concept
		if !rel.LabelTerm.IsEmpty() {
			classification = p.resolver.ResolveField(p.ctx, rel.LabelTerm.String(), thesaurus.ModeReference).Concept
			p.emit(classification)
		}
		for _, obj := range rel.Objects {
			if obj.ID.IsEmpty() {
				continue
			}
			target := p.assigner.External(entity.KindWork, obj.ID.String())
			role := &entity.Role{
				ID: p.assigner.IdentityFor(entity.KindRole, "", identity.Key{
					Owner: workID,
					Role:  "related",
					Fields: []identity.Field{
						identity.F("object", target),
						identity.F("label", rel.Label.String()),
						identity.F("classification", rel.LabelTerm.String()),
						identity.F("note", rel.Note.String()),
					},
				}),
				Subject:        workID,
				Object:         target,
				Label:          rel.Label.String(),
				Classification: classification,
				Note:           rel.Note.String(),
			}
			p.emit(role)
			out = append(out, role)
		}
	}
	return out
}
