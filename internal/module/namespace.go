package module

// CloseNamespace folds a namespace back into its enclosing scope:
// entities declared directly at depth, whose owning family was declared
// at a shallower depth (i.e. they are being exported out of a nested
// namespace), have prefix+":" prepended to their name. Type-family
// declarations themselves (Matrix 0's constructors) are never renamed by
// this step, only constructors/destructors of a family are. Every
// entity at exactly depth then has its depth decremented, moving it
// into the enclosing scope.
func (m *Module) CloseNamespace(depth int, prefix string) {
	for fi := 1; fi < len(m.Matrices); fi++ {
		familyDepth := m.Matrices[0].Constructors[fi].Depth
		if familyDepth >= depth {
			continue
		}
		mat := &m.Matrices[fi]
		for ci := range mat.Constructors {
			c := &mat.Constructors[ci]
			if c.Depth == depth {
				c.Name = prefix + ":" + c.Name
			}
		}
		for di := range mat.Destructors {
			d := &mat.Destructors[di]
			if d.Depth == depth {
				d.Name = prefix + ":" + d.Name
			}
		}
	}

	for fi := range m.Matrices {
		mat := &m.Matrices[fi]
		for ci := range mat.Constructors {
			if mat.Constructors[ci].Depth == depth {
				mat.Constructors[ci].Depth = depth - 1
			}
		}
		for di := range mat.Destructors {
			if mat.Destructors[di].Depth == depth {
				mat.Destructors[di].Depth = depth - 1
			}
		}
	}
}
